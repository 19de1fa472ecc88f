package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/ytgrab-bot/internal/dispatch"
	"github.com/ytget/ytgrab-bot/internal/download"
	"github.com/ytget/ytgrab-bot/internal/events"
	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/notice"
	"github.com/ytget/ytgrab-bot/internal/platform"
	"github.com/ytget/ytgrab-bot/internal/session"
)

const (
	testOwner  = int64(42)
	testChat   = int64(4242)
	testURL    = "https://www.youtube.com/watch?v=abc"
	otherOwner = int64(7)
)

type fakeProber struct {
	info  *model.VideoInfo
	err   error
	calls int
}

func (f *fakeProber) Probe(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	f.calls++
	return f.info, f.err
}

type fakeAcquirer struct {
	dir      string
	size     int64
	err      error
	requests []download.Request
	path     string
}

func (f *fakeAcquirer) Fetch(ctx context.Context, req download.Request) (*model.AcquisitionResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	f.path = filepath.Join(f.dir, "youtube_42_1_0123abcd.mp4")
	if err := os.WriteFile(f.path, []byte("data"), 0o644); err != nil {
		return nil, err
	}
	return &model.AcquisitionResult{
		ArtifactPath: f.path,
		SizeBytes:    f.size,
		IsAudioOnly:  req.EncodingRef == model.BestAudioRef,
	}, nil
}

type fakeDispatcher struct {
	err        error
	deliveries []dispatch.Delivery
}

func (f *fakeDispatcher) Deliver(ctx context.Context, d dispatch.Delivery) error {
	f.deliveries = append(f.deliveries, d)
	return f.err
}

type sentMessage struct {
	text    string
	buttons []model.Button
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	edits   []sentMessage
	answers []string
	alerts  []bool
}

func (f *fakeNotifier) Send(ctx context.Context, chatID int64, text string, buttons []model.Button) (model.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{text: text, buttons: buttons})
	return model.MessageRef{ChatID: chatID, MessageID: len(f.sent)}, nil
}

func (f *fakeNotifier) Edit(ctx context.Context, ref model.MessageRef, text string, buttons []model.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentMessage{text: text, buttons: buttons})
	return nil
}

func (f *fakeNotifier) Answer(ctx context.Context, callbackID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, text)
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeNotifier) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) > 0 {
		return f.edits[len(f.edits)-1].text
	}
	if len(f.sent) > 0 {
		return f.sent[len(f.sent)-1].text
	}
	return ""
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fixture struct {
	svc        *Service
	store      *session.MemoryStore
	prober     *fakeProber
	acquirer   *fakeAcquirer
	dispatcher *fakeDispatcher
	notifier   *fakeNotifier
	publisher  *fakePublisher
	texts      *notice.Localization
}

func sampleInfo() *model.VideoInfo {
	return &model.VideoInfo{
		ID:         "abc",
		Title:      "Sample",
		WebpageURL: testURL,
		Encodings: []model.Encoding{
			{FormatID: "140", Ext: "m4a", HasAudio: true, Filesize: 3 * model.MiB},
			{FormatID: "18", Ext: "mp4", HasVideo: true, HasAudio: true, Height: 360, FPS: 30},
			{FormatID: "22", Ext: "mp4", HasVideo: true, HasAudio: true, Height: 720, FPS: 30},
			{FormatID: "37", Ext: "mp4", HasVideo: true, HasAudio: true, Height: 1080, FPS: 30},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      session.NewMemoryStore(10 * time.Minute),
		prober:     &fakeProber{info: sampleInfo()},
		acquirer:   &fakeAcquirer{dir: t.TempDir(), size: 5 * model.MiB},
		dispatcher: &fakeDispatcher{},
		notifier:   &fakeNotifier{},
		publisher:  &fakePublisher{},
		texts:      notice.NewLocalization("en"),
	}
	f.svc = NewService(Deps{
		Detector:   platform.NewDetector(platform.DefaultTable()),
		Prober:     f.prober,
		Store:      f.store,
		Acquirer:   f.acquirer,
		Dispatcher: f.dispatcher,
		Notifier:   f.notifier,
		Publisher:  f.publisher,
		Texts:      f.texts,
	}, Limits{
		ProbeTimeout:    time.Second,
		DownloadTimeout: time.Second,
		UploadTimeout:   time.Second,
		MaxUploadBytes:  50 * model.MiB,
	}, zerolog.Nop())
	return f
}

func (f *fixture) submit(t *testing.T) model.Outcome {
	t.Helper()
	return f.svc.HandleSubmission(context.Background(), model.Submission{
		OwnerID: testOwner,
		ChatID:  testChat,
		URL:     testURL,
	})
}

func (f *fixture) press(t *testing.T, caller int64, ref string) model.Outcome {
	t.Helper()
	data, err := model.NewDownloadToken(platform.YouTube, ref, testOwner).Encode()
	if err != nil {
		t.Fatalf("Expected token to encode, got %v", err)
	}
	return f.svc.HandleCallback(context.Background(), model.Callback{
		ID:        "cb",
		CallerID:  caller,
		ChatID:    testChat,
		MessageID: 1,
		Data:      data,
	})
}

func TestHandleSubmissionUnsupported(t *testing.T) {
	f := newFixture(t)

	out := f.svc.HandleSubmission(context.Background(), model.Submission{
		OwnerID: testOwner,
		ChatID:  testChat,
		URL:     "https://example.com/video",
	})

	if out.State != model.StateIdle {
		t.Errorf("Expected state Idle, got %s", out.State)
	}
	if !errors.Is(out.Err, model.ErrUnsupportedPlatform) {
		t.Errorf("Expected ErrUnsupportedPlatform, got %v", out.Err)
	}
	if f.prober.calls != 0 {
		t.Errorf("Expected no probe, got %d calls", f.prober.calls)
	}
	if f.store.Len() != 0 {
		t.Errorf("Expected no session, got %d", f.store.Len())
	}
	if !strings.Contains(f.notifier.last(), platform.YouTube) {
		t.Errorf("Expected supported platforms in notice, got %q", f.notifier.last())
	}
}

func TestHandleSubmissionPresentsOptions(t *testing.T) {
	f := newFixture(t)

	out := f.submit(t)

	if out.State != model.StateOptionsPresented {
		t.Fatalf("Expected OptionsPresented, got %s (%v)", out.State, out.Err)
	}
	if f.store.Len() != 1 {
		t.Errorf("Expected one session, got %d", f.store.Len())
	}

	last := f.notifier.edits[len(f.notifier.edits)-1]
	if len(last.buttons) != 4 {
		t.Fatalf("Expected 4 buttons, got %d", len(last.buttons))
	}
	for _, b := range last.buttons {
		token, err := model.ParseCallbackToken(b.Data)
		if err != nil {
			t.Errorf("Expected button data to parse, got %v", err)
			continue
		}
		if token.OwnerID != testOwner {
			t.Errorf("Expected owner %d, got %d", testOwner, token.OwnerID)
		}
		if token.Platform != platform.YouTube {
			t.Errorf("Expected platform %s, got %s", platform.YouTube, token.Platform)
		}
	}
}

func TestHandleSubmissionProbeFailure(t *testing.T) {
	f := newFixture(t)
	f.prober.err = model.ErrProbe

	out := f.submit(t)

	if out.State != model.StateAborted || out.FailedAt != model.StateAnalyzing {
		t.Errorf("Expected Aborted at Analyzing, got %s at %s", out.State, out.FailedAt)
	}
	if f.store.Len() != 0 {
		t.Errorf("Expected no session, got %d", f.store.Len())
	}
	if f.notifier.last() != f.texts.GetText(notice.KeyAnalyzeFailed) {
		t.Errorf("Expected analyze failed notice, got %q", f.notifier.last())
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != events.TypeAborted {
		t.Errorf("Expected one aborted event, got %v", f.publisher.events)
	}
}

func TestHandleSubmissionNoEncodings(t *testing.T) {
	f := newFixture(t)
	f.prober.info = &model.VideoInfo{ID: "abc", WebpageURL: testURL}

	out := f.submit(t)

	if out.State != model.StateAborted || out.FailedAt != model.StateAnalyzing {
		t.Errorf("Expected Aborted at Analyzing, got %s at %s", out.State, out.FailedAt)
	}
	if !errors.Is(out.Err, model.ErrNoOptions) {
		t.Errorf("Expected ErrNoOptions, got %v", out.Err)
	}
	if f.store.Len() != 0 {
		t.Errorf("Expected no session, got %d", f.store.Len())
	}
	if len(f.acquirer.requests) != 0 {
		t.Errorf("Expected acquirer not to be called, got %d calls", len(f.acquirer.requests))
	}
}

func TestHandleSubmissionPlaylistItem(t *testing.T) {
	f := newFixture(t)
	info := sampleInfo()
	info.FromPlaylist = true
	info.WebpageURL = "https://www.youtube.com/watch?v=first"
	f.prober.info = info

	if out := f.submit(t); out.State != model.StateOptionsPresented {
		t.Fatalf("Expected OptionsPresented, got %s", out.State)
	}
	f.press(t, testOwner, "22")

	if len(f.acquirer.requests) != 1 {
		t.Fatalf("Expected one fetch, got %d", len(f.acquirer.requests))
	}
	if got := f.acquirer.requests[0].URL; got != info.WebpageURL {
		t.Errorf("Expected fetch of %s, got %s", info.WebpageURL, got)
	}
}

func TestHandleCallbackDelivers(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	out := f.press(t, testOwner, "22")

	if out.State != model.StateDone {
		t.Fatalf("Expected Done, got %s (%v)", out.State, out.Err)
	}
	if len(f.dispatcher.deliveries) != 1 {
		t.Fatalf("Expected one delivery, got %d", len(f.dispatcher.deliveries))
	}
	d := f.dispatcher.deliveries[0]
	if d.ChatID != testChat || d.Platform != platform.YouTube || d.AudioOnly {
		t.Errorf("Unexpected delivery %+v", d)
	}
	if req := f.acquirer.requests[0]; req.URL != testURL || req.EncodingRef != "22" {
		t.Errorf("Unexpected request %+v", req)
	}
	if _, err := os.Stat(f.acquirer.path); !os.IsNotExist(err) {
		t.Errorf("Expected artifact to be removed, got %v", err)
	}
	if f.notifier.last() != f.texts.Sent(5) {
		t.Errorf("Expected sent notice, got %q", f.notifier.last())
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != events.TypeDelivered {
		t.Errorf("Expected one delivered event, got %v", f.publisher.events)
	}
}

func TestHandleCallbackAudio(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	out := f.press(t, testOwner, model.BestAudioRef)

	if out.State != model.StateDone {
		t.Fatalf("Expected Done, got %s", out.State)
	}
	if !f.dispatcher.deliveries[0].AudioOnly {
		t.Error("Expected audio delivery")
	}
}

func TestHandleCallbackForeign(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	out := f.press(t, otherOwner, "22")

	if !errors.Is(out.Err, model.ErrSessionExpiredOrForeign) {
		t.Errorf("Expected ErrSessionExpiredOrForeign, got %v", out.Err)
	}
	if f.store.Len() != 1 {
		t.Errorf("Expected session to survive, got %d", f.store.Len())
	}
	if len(f.acquirer.requests) != 0 {
		t.Errorf("Expected no fetch, got %d", len(f.acquirer.requests))
	}
	if got := f.notifier.answers[len(f.notifier.answers)-1]; got != f.texts.GetText(notice.KeyNotYourDownload) {
		t.Errorf("Expected not-your-download notice, got %q", got)
	}

	if out := f.press(t, testOwner, "22"); out.State != model.StateDone {
		t.Errorf("Expected owner to still complete, got %s", out.State)
	}
}

func TestHandleCallbackExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	first := f.press(t, testOwner, "22")
	second := f.press(t, testOwner, "22")

	if first.State != model.StateDone {
		t.Errorf("Expected first Done, got %s", first.State)
	}
	if second.State != model.StateIdle || !errors.Is(second.Err, model.ErrSessionExpiredOrForeign) {
		t.Errorf("Expected second to be expired, got %s (%v)", second.State, second.Err)
	}
	if len(f.acquirer.requests) != 1 {
		t.Errorf("Expected one fetch, got %d", len(f.acquirer.requests))
	}
}

func TestHandleCallbackConcurrentPresses(t *testing.T) {
	f := newFixture(t)
	f.acquirer.err = model.ErrDownload
	f.submit(t)

	data, _ := model.NewDownloadToken(platform.YouTube, "22", testOwner).Encode()

	var wg sync.WaitGroup
	outcomes := make([]model.Outcome, 8)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = f.svc.HandleCallback(context.Background(), model.Callback{
				ID: "cb", CallerID: testOwner, ChatID: testChat, MessageID: 1, Data: data,
			})
		}(i)
	}
	wg.Wait()

	taken := 0
	for _, out := range outcomes {
		if out.State == model.StateAborted {
			taken++
		}
	}
	if taken != 1 {
		t.Errorf("Expected exactly one press to take the session, got %d", taken)
	}
}

func TestHandleCallbackStalePlatform(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	data, err := model.NewDownloadToken(platform.Vimeo, "hls-720", testOwner).Encode()
	if err != nil {
		t.Fatalf("Expected token to encode, got %v", err)
	}
	out := f.svc.HandleCallback(context.Background(), model.Callback{
		ID: "cb", CallerID: testOwner, ChatID: testChat, MessageID: 1, Data: data,
	})

	if !errors.Is(out.Err, model.ErrSessionExpiredOrForeign) {
		t.Errorf("Expected ErrSessionExpiredOrForeign, got %v", out.Err)
	}
	if len(f.acquirer.requests) != 0 {
		t.Errorf("Expected no fetch, got %d", len(f.acquirer.requests))
	}
	if f.store.Len() != 1 {
		t.Errorf("Expected session to be restored, got %d", f.store.Len())
	}

	if out := f.press(t, testOwner, "22"); out.State != model.StateDone {
		t.Errorf("Expected current options to still work, got %s", out.State)
	}
}

func TestHandleCallbackMalformed(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	out := f.svc.HandleCallback(context.Background(), model.Callback{
		ID: "cb", CallerID: testOwner, ChatID: testChat, Data: "garbage",
	})

	if !out.Ignored {
		t.Error("Expected malformed callback to be ignored")
	}
	if f.store.Len() != 1 {
		t.Errorf("Expected session to survive, got %d", f.store.Len())
	}
}

func TestHandleCallbackStageFailures(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(f *fixture)
		stage       model.State
		target      error
		dispatched  int
		artifactRan bool
	}{
		{
			name:   "download fails",
			setup:  func(f *fixture) { f.acquirer.err = model.ErrDownload },
			stage:  model.StateDownloading,
			target: model.ErrDownload,
		},
		{
			name:        "too large",
			setup:       func(f *fixture) { f.acquirer.size = 60 * model.MiB },
			stage:       model.StateValidating,
			target:      model.ErrSizeExceeded,
			artifactRan: true,
		},
		{
			name: "upload fails",
			setup: func(f *fixture) {
				f.dispatcher.err = &model.UploadError{Attempts: []model.UploadAttempt{
					{Strategy: "video", Err: errors.New("boom")},
				}}
			},
			stage:       model.StateUploading,
			target:      model.ErrUpload,
			dispatched:  1,
			artifactRan: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)
			f.submit(t)

			out := f.press(t, testOwner, "22")

			if out.State != model.StateAborted || out.FailedAt != tt.stage {
				t.Errorf("Expected Aborted at %s, got %s at %s", tt.stage, out.State, out.FailedAt)
			}
			if !errors.Is(out.Err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, out.Err)
			}
			if len(f.dispatcher.deliveries) != tt.dispatched {
				t.Errorf("Expected %d deliveries, got %d", tt.dispatched, len(f.dispatcher.deliveries))
			}
			if tt.artifactRan {
				if _, err := os.Stat(f.acquirer.path); !os.IsNotExist(err) {
					t.Errorf("Expected artifact to be removed, got %v", err)
				}
			}
			if n := len(f.publisher.events); n != 1 || f.publisher.events[0].Stage != tt.stage.String() {
				t.Errorf("Expected one aborted event at %s, got %v", tt.stage, f.publisher.events)
			}
		})
	}
}

func TestHandleCallbackTooLargeNotice(t *testing.T) {
	f := newFixture(t)
	f.acquirer.size = 60 * model.MiB
	f.submit(t)

	f.press(t, testOwner, "37")

	expected := f.texts.TooLarge(60, 50)
	if f.notifier.last() != expected {
		t.Errorf("Expected %q, got %q", expected, f.notifier.last())
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{model.ErrNoOptions, model.ErrNoOptions.Error()},
		{&model.SizeExceededError{SizeBytes: 2, LimitBytes: 1}, model.ErrSizeExceeded.Error()},
		{errors.New("other"), "other"},
	}

	for _, tt := range tests {
		if got := reason(tt.err); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}
