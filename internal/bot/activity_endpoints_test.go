package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
)

// A member who only posts media must still count as active: every
// content endpoint has to feed the activity handler, not just text.
func TestActivityEndpointsCoverAllContentKinds(t *testing.T) {
	required := []string{
		tele.OnText,
		tele.OnSticker,
		tele.OnPhoto,
		tele.OnVideo,
		tele.OnVoice,
		tele.OnAudio,
		tele.OnDocument,
		tele.OnAnimation,
		tele.OnVideoNote,
		tele.OnLocation,
		tele.OnContact,
	}

	registered := make(map[string]struct{}, len(activityEndpoints))
	for _, e := range activityEndpoints {
		registered[e] = struct{}{}
	}

	for _, e := range required {
		_, ok := registered[e]
		assert.True(t, ok, "endpoint %q is not tracked as activity", e)
	}
}
