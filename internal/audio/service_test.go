package audio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"leads_dashboard_backend/internal/adapters/storage"
	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/apperr"
	"leads_dashboard_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadStore struct {
	leads      map[uuid.UUID]repository.Lead
	statuses   map[uuid.UUID]string
	logEntries []string
	statusErr  error
}

func newFakeLeadStore(leads ...repository.Lead) *fakeLeadStore {
	store := &fakeLeadStore{
		leads:    make(map[uuid.UUID]repository.Lead),
		statuses: make(map[uuid.UUID]string),
	}
	for _, lead := range leads {
		store.leads[lead.ID] = lead
	}
	return store
}

func (s *fakeLeadStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (s *fakeLeadStore) UpdateWhatsAppStatus(_ context.Context, id uuid.UUID, status string) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statuses[id] = status
	return nil
}

func (s *fakeLeadStore) InsertWhatsAppLog(_ context.Context, _ uuid.UUID, _, status, message string) error {
	s.logEntries = append(s.logEntries, status+": "+message)
	return nil
}

type fakeSynth struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeSynth) Enabled() bool { return true }

func (f *fakeSynth) Synthesize(context.Context, string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

type fakeMessenger struct {
	sent        []string
	automations []string
	sendErr     error
	triggerErr  error
}

func (f *fakeMessenger) Enabled() bool { return true }

func (f *fakeMessenger) SendMessage(_ context.Context, phone, message string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, phone+"|"+message)
	return nil
}

func (f *fakeMessenger) TriggerAutomation(_ context.Context, phone, _ string) error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.automations = append(f.automations, phone)
	return nil
}

type fakeStorage struct {
	uploads []string
}

func (f *fakeStorage) UploadFile(_ context.Context, _, folder, fileName, _ string, _ io.Reader, _ int64) (string, error) {
	key := folder + "/" + fileName
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeStorage) GenerateDownloadURL(_ context.Context, _, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{
		URL:       "https://storage.local/" + fileKey,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeStorage) DeleteObject(context.Context, string, string) error { return nil }

func (f *fakeStorage) EnsureBucketExists(context.Context, string) error { return nil }

func (f *fakeStorage) ValidateContentType(string) error { return nil }

func (f *fakeStorage) ValidateFileSize(int64) error { return nil }

type fakeAudioConfig struct {
	simulation bool
}

func (f fakeAudioConfig) GetAudioCopiesFile() string      { return "" }
func (f fakeAudioConfig) GetSimulationMode() bool         { return f.simulation }
func (f fakeAudioConfig) GetAppBaseURL() string           { return "https://app.local" }
func (f fakeAudioConfig) GetAutoAudioOnStudentFlag() bool { return false }

func strPtr(s string) *string { return &s }

func testLead(id uuid.UUID) repository.Lead {
	return repository.Lead{
		ID:                id,
		Nome:              "Maria Silva",
		Email:             strPtr("maria@example.com"),
		Celular:           strPtr("+5511999998888"),
		ElementoPrincipal: strPtr("RIM"),
	}
}

func newTestService(store LeadStore, synth Synthesizer, storageSvc storage.StorageService, messenger Messenger, simulation bool) *Service {
	log := logger.New("test")
	scripts := NewScriptGenerator(cloneLibrary(defaultLibrary), fakeScriptAIConfig{}, log)
	return NewService(store, scripts, synth, storageSvc, "audio-messages", messenger, nil,
		fakeAudioConfig{simulation: simulation}, log)
}

type fakeScriptAIConfig struct{}

func (fakeScriptAIConfig) GetGeminiAPIKey() string { return "" }
func (fakeScriptAIConfig) GetGeminiModel() string  { return "" }
func (fakeScriptAIConfig) IsScriptAIEnabled() bool { return false }

func TestSendPersonalizedAudio(t *testing.T) {
	leadID := uuid.New()
	store := newFakeLeadStore(testLead(leadID))
	synth := &fakeSynth{audio: []byte("mp3-bytes")}
	storageSvc := &fakeStorage{}
	messenger := &fakeMessenger{}

	svc := newTestService(store, synth, storageSvc, messenger, false)

	result, err := svc.SendPersonalizedAudio(context.Background(), leadID)
	if err != nil {
		t.Fatalf("SendPersonalizedAudio() error = %v", err)
	}
	if !result.Success || result.Simulated {
		t.Errorf("result = %+v, want success and not simulated", result)
	}
	if result.ScriptType != "NÃO-ALUNO" {
		t.Errorf("script type = %q, want NÃO-ALUNO", result.ScriptType)
	}
	if !strings.Contains(result.AudioURL, "https://storage.local/") {
		t.Errorf("audio URL = %q", result.AudioURL)
	}
	if len(storageSvc.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(storageSvc.uploads))
	}
	if want := fmt.Sprintf("personalizado/%s.mp3", leadID); storageSvc.uploads[0] != want {
		t.Errorf("upload key = %q, want %q", storageSvc.uploads[0], want)
	}
	if len(messenger.automations) != 1 {
		t.Errorf("automation triggers = %d, want 1", len(messenger.automations))
	}
	if got := store.statuses[leadID]; got != StatusAudioAutomation {
		t.Errorf("lead status = %q, want %q", got, StatusAudioAutomation)
	}
	if len(store.logEntries) != 1 {
		t.Errorf("log entries = %d, want 1", len(store.logEntries))
	}
}

func TestSendPersonalizedAudioSimulation(t *testing.T) {
	leadID := uuid.New()
	store := newFakeLeadStore(testLead(leadID))
	synth := &fakeSynth{audio: []byte("mp3-bytes")}
	storageSvc := &fakeStorage{}
	messenger := &fakeMessenger{}

	svc := newTestService(store, synth, storageSvc, messenger, true)

	result, err := svc.SendPersonalizedAudio(context.Background(), leadID)
	if err != nil {
		t.Fatalf("SendPersonalizedAudio() error = %v", err)
	}
	if !result.Simulated {
		t.Error("expected simulated result")
	}
	if result.Script == "" {
		t.Error("simulation should still return the script")
	}
	if synth.calls != 0 {
		t.Errorf("synthesize calls = %d, want 0 in simulation", synth.calls)
	}
	if len(storageSvc.uploads) != 0 || len(messenger.automations) != 0 {
		t.Error("simulation must not hit storage or messaging")
	}
	if got := store.statuses[leadID]; got != StatusSimulated {
		t.Errorf("lead status = %q, want %q", got, StatusSimulated)
	}
}

func TestSendPersonalizedAudioErrors(t *testing.T) {
	leadID := uuid.New()

	t.Run("lead not found", func(t *testing.T) {
		svc := newTestService(newFakeLeadStore(), &fakeSynth{}, &fakeStorage{}, &fakeMessenger{}, false)
		_, err := svc.SendPersonalizedAudio(context.Background(), leadID)
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Errorf("error = %v, want not found", err)
		}
	})

	t.Run("missing phone", func(t *testing.T) {
		lead := testLead(leadID)
		lead.Celular = nil
		svc := newTestService(newFakeLeadStore(lead), &fakeSynth{}, &fakeStorage{}, &fakeMessenger{}, false)
		_, err := svc.SendPersonalizedAudio(context.Background(), leadID)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("error = %v, want validation", err)
		}
	})

	t.Run("synthesis failure", func(t *testing.T) {
		synth := &fakeSynth{err: fmt.Errorf("voice quota exceeded")}
		store := newFakeLeadStore(testLead(leadID))
		svc := newTestService(store, synth, &fakeStorage{}, &fakeMessenger{}, false)
		_, err := svc.SendPersonalizedAudio(context.Background(), leadID)
		if !apperr.Is(err, apperr.KindUnavailable) {
			t.Errorf("error = %v, want unavailable", err)
		}
		if len(store.statuses) != 0 {
			t.Error("failed synthesis must not update lead status")
		}
	})

	t.Run("automation trigger failure", func(t *testing.T) {
		messenger := &fakeMessenger{triggerErr: fmt.Errorf("automation down")}
		store := newFakeLeadStore(testLead(leadID))
		svc := newTestService(store, &fakeSynth{audio: []byte("x")}, &fakeStorage{}, messenger, false)
		_, err := svc.SendPersonalizedAudio(context.Background(), leadID)
		if !apperr.Is(err, apperr.KindUnavailable) {
			t.Errorf("error = %v, want unavailable", err)
		}
	})
}

func TestSendWhatsAppMessage(t *testing.T) {
	leadID := uuid.New()

	tests := []struct {
		name         string
		kind         MessageKind
		custom       string
		wantStatus   string
		wantContains string
		wantErrKind  apperr.Kind
	}{
		{
			name:         "diagnostic message",
			kind:         KindDiagnostic,
			wantStatus:   StatusDiagnosticSent,
			wantContains: "https://app.local/resultado/",
		},
		{
			name:         "challenge message",
			kind:         KindChallenge,
			wantStatus:   StatusChallengeSent,
			wantContains: "https://app.local/desafio?ref=",
		},
		{
			name:         "custom message",
			kind:         KindCustom,
			custom:       "Olá, tudo bem?",
			wantStatus:   "mensagem_enviada",
			wantContains: "Olá, tudo bem?",
		},
		{
			name:        "custom without text",
			kind:        KindCustom,
			wantErrKind: apperr.KindValidation,
		},
		{
			name:        "unknown kind",
			kind:        MessageKind("bogus"),
			wantErrKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeLeadStore(testLead(leadID))
			messenger := &fakeMessenger{}
			svc := newTestService(store, &fakeSynth{}, &fakeStorage{}, messenger, false)

			result, err := svc.SendWhatsAppMessage(context.Background(), leadID, tt.kind, tt.custom)
			if tt.wantErrKind != apperr.KindUnknown {
				if !apperr.Is(err, tt.wantErrKind) {
					t.Fatalf("error = %v, want kind %v", err, tt.wantErrKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("SendWhatsAppMessage() error = %v", err)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", result.Status, tt.wantStatus)
			}
			if len(messenger.sent) != 1 {
				t.Fatalf("sent = %d, want 1", len(messenger.sent))
			}
			if !strings.Contains(messenger.sent[0], tt.wantContains) {
				t.Errorf("message %q missing %q", messenger.sent[0], tt.wantContains)
			}
			if got := store.statuses[leadID]; got != tt.wantStatus {
				t.Errorf("lead status = %q, want %q", got, tt.wantStatus)
			}
		})
	}
}

func TestSendWhatsAppMessageDeliveryFailure(t *testing.T) {
	leadID := uuid.New()
	store := newFakeLeadStore(testLead(leadID))
	messenger := &fakeMessenger{sendErr: fmt.Errorf("gateway timeout")}
	svc := newTestService(store, &fakeSynth{}, &fakeStorage{}, messenger, false)

	_, err := svc.SendWhatsAppMessage(context.Background(), leadID, KindDiagnostic, "")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("error = %v, want unavailable", err)
	}
	if len(store.statuses) != 0 {
		t.Error("failed delivery must not update lead status")
	}
	if len(store.logEntries) != 1 || !strings.HasPrefix(store.logEntries[0], "failed:") {
		t.Errorf("log entries = %v, want one failed entry", store.logEntries)
	}
}
