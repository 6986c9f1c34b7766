package telegram

import (
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mzhaase/babelgif/internal/pipeline"
	"github.com/mzhaase/babelgif/pkg/translate"
)

// Cache times in seconds for answered inline queries. Pipeline results are
// unique per keystroke sequence and must not be cached; static answers may
// be, briefly.
const (
	cacheTimeResult = 0
	cacheTimeStatic = 1
)

// gifResult builds the inline GIF answer for a successful pipeline run. The
// result ID combines user and token so retries of the same settled input get
// distinct IDs.
func gifResult(req pipeline.Request, out pipeline.Outcome) tgbotapi.InlineQueryResultGIF {
	gif := tgbotapi.NewInlineQueryResultGIF(
		fmt.Sprintf("%d-%d", req.UserID, req.Token), out.ArtifactURL)
	gif.ThumbURL = out.ArtifactURL
	gif.Title = out.DisplayText
	gif.Caption = fmt.Sprintf("%s (%s): %s", req.Text, out.LanguageName, out.DisplayText)
	return gif
}

// failureResult builds an article explaining why the run produced nothing.
func failureResult(reason pipeline.Reason) tgbotapi.InlineQueryResultArticle {
	var title, body string
	switch reason {
	case pipeline.ReasonRenderFailed:
		title = "Could not render that text"
		body = "The animation renderer rejected this input. Try plain text without unusual symbols."
	case pipeline.ReasonUploadFailed:
		title = "Upload failed"
		body = "The file host did not accept the animation. Please try again in a moment."
	case pipeline.ReasonUploadInvalidURL:
		title = "Upload failed"
		body = "The file host returned a broken link. Please try again in a moment."
	case pipeline.ReasonTimedOut:
		title = "Took too long"
		body = "The translation animation could not be produced in time. Please try again."
	default:
		title = "Something went wrong"
		body = "An internal error occurred. Please try again."
	}
	return tgbotapi.NewInlineQueryResultArticle("failure-"+string(reason), title, body)
}

// deniedResult is the answer for users missing from the allowlist.
func deniedResult() tgbotapi.InlineQueryResultArticle {
	return tgbotapi.NewInlineQueryResultArticle(
		"denied",
		"Not authorised",
		"You are not on this bot's allowlist.",
	)
}

// helpResult lists usage and the available language commands.
func helpResult(catalog *translate.Catalog) tgbotapi.InlineQueryResultArticle {
	var b strings.Builder
	b.WriteString("Type text to get a translated GIF in a random language.\n")
	b.WriteString("Prefix with a language command to pick one:\n")

	type entry struct{ code, name string }
	entries := make([]entry, 0, catalog.Len())
	for _, code := range catalog.Codes() {
		name, _ := catalog.Name(code)
		entries = append(entries, entry{code, name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	for _, e := range entries {
		fmt.Fprintf(&b, "/%s %s\n", e.code, e.name)
	}
	b.WriteString("/random picks any of the above.")

	return tgbotapi.NewInlineQueryResultArticle("help", "How to use this bot", b.String())
}
