package voice

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/pkg/config"
	"github.com/rentalneeds/leadflow-backend/pkg/testutil"
)

func fetch(t *testing.T, cfg config.VoiceConfig) WidgetConfig {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r)

	rr := testutil.ExecuteRequest(r, testutil.NewHTTPRequest(http.MethodGet, "/voice/assistant", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		Data WidgetConfig `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &resp)
	return resp.Data
}

func TestHandler_HostedAssistant(t *testing.T) {
	got := fetch(t, config.VoiceConfig{PublicKey: "pk_1", AssistantID: "asst_42"})

	assert.Equal(t, "pk_1", got.PublicKey)
	assert.Equal(t, "asst_42", got.AssistantID)
	assert.Nil(t, got.Assistant)
}

func TestHandler_InlineAssistant(t *testing.T) {
	got := fetch(t, config.VoiceConfig{PublicKey: "pk_1", Temperature: 0.7})

	require.NotNil(t, got.Assistant)
	assert.Empty(t, got.AssistantID)
	assert.Equal(t, "RentalNeeds AI Assistant", got.Assistant.Name)
	assert.Equal(t, "gpt-4o", got.Assistant.Model.Model)
	assert.InDelta(t, 0.7, got.Assistant.Model.Temperature, 1e-9)
	assert.Equal(t, "jennifer", got.Assistant.Voice.VoiceID)
	require.Len(t, got.Assistant.Model.Messages, 1)
	assert.Equal(t, "system", got.Assistant.Model.Messages[0].Role)
	assert.Contains(t, got.Assistant.Model.Messages[0].Content, "rent-to-own")
	assert.NotEmpty(t, got.Assistant.FirstMessage)
}
