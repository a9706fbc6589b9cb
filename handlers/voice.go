package handlers

import (
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"slotify/models"
	"slotify/services/agent"
	"slotify/services/speech"
	"slotify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MaxAudioFileSize = 5 * 1024 * 1024 // 5MB
	AllowedExtension = ".wav"
)

// VoiceChatHandler runs one spoken turn: transcribe the uploaded audio, feed
// the transcript through the same turn pipeline as text chat, then synthesize
// the reply. Synthesis failures degrade to a text-only response.
func VoiceChatHandler(agentSvc agent.Service, stt speech.Transcriber, tts speech.Synthesizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		if stt == nil {
			utils.JSONError(c, http.StatusServiceUnavailable, "Voice chat is not configured", "speech credentials missing")
			return
		}

		// 1. Optional session id and language (default en-US)
		sessionID := c.PostForm("sessionId")
		language := c.DefaultPostForm("language", "en-US")

		// 2. Get audio file from multipart form
		file, header, err := c.Request.FormFile("audio")
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Audio file is required", err.Error())
			return
		}
		defer file.Close()

		// 3. Validate file extension
		if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != AllowedExtension {
			utils.JSONError(c, http.StatusBadRequest, "Invalid file type",
				fmt.Sprintf("expected %s, got %s", AllowedExtension, ext))
			return
		}

		// 4. Save uploaded audio to a temp file
		tempInput, err := os.CreateTemp("", "voice-*.wav")
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to create temp file", err.Error())
			return
		}
		defer os.Remove(tempInput.Name())
		defer tempInput.Close()

		written, err := io.Copy(tempInput, io.LimitReader(file, MaxAudioFileSize+1))
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to save audio file", err.Error())
			return
		}
		if written > MaxAudioFileSize {
			utils.JSONError(c, http.StatusBadRequest, "Audio file too large",
				fmt.Sprintf("limit is %d bytes", MaxAudioFileSize))
			return
		}

		// 5. Convert to 16kHz mono LINEAR16
		tempOutput, err := os.CreateTemp("", "converted-*.wav")
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to create output temp file", err.Error())
			return
		}
		defer os.Remove(tempOutput.Name())
		defer tempOutput.Close()

		if err := speech.ConvertToLinear16(tempInput.Name(), tempOutput.Name()); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Audio conversion failed", err.Error())
			return
		}

		audioData, err := os.ReadFile(tempOutput.Name())
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to read converted audio", err.Error())
			return
		}

		// 6. Transcribe
		transcript, err := stt.Transcribe(c.Request.Context(), audioData, language)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Speech recognition failed", err.Error())
			return
		}
		if transcript == "" {
			// Silence is a conversational miss, not a client error.
			c.JSON(http.StatusOK, models.VoiceChatResponse{
				SessionID: sessionID,
				Response:  "Could not transcribe audio. Please try again.",
				Success:   false,
			})
			return
		}

		// 7. Run the turn with the transcript
		turn := agentSvc.ProcessTurn(c.Request.Context(), sessionID, transcript)

		resp := models.VoiceChatResponse{
			SessionID:  turn.SessionID,
			Transcript: transcript,
			Response:   turn.Response,
			Stage:      turn.Stage,
			Done:       turn.Done,
			Success:    turn.Success,
		}

		// 8. Synthesize the reply; text still goes back if this fails
		if tts != nil {
			audio, err := tts.Synthesize(c.Request.Context(), turn.Response)
			if err != nil {
				logger.Warn("Voice synthesis failed, returning text only",
					zap.String("sessionId", turn.SessionID), zap.Error(err))
			} else {
				resp.AudioData = hex.EncodeToString(audio)
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}
