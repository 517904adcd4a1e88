// Package chat holds the state of a single conversation: the ordered message
// list, the draft, the pending flag and the last error. It knows nothing about
// rendering; a Surface is told when state changes.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/openxai/openxai-chat/internal/errors"
	"github.com/openxai/openxai-chat/internal/logging"
	"github.com/openxai/openxai-chat/internal/models"
)

// DefaultErrorWindow is how long a request failure stays visible
const DefaultErrorWindow = 5 * time.Second

// KeySubmit is the primary send key
const KeySubmit = "enter"

// Sender delivers one user message to the chat backend and returns the reply
type Sender interface {
	Send(ctx context.Context, message string) (string, error)
}

// Surface displays conversation state. Refresh is called after every state
// change; ScrollToNewest after every change to the message list.
type Surface interface {
	Refresh(state State)
	ScrollToNewest()
}

type nopSurface struct{}

func (nopSurface) Refresh(State)   {}
func (nopSurface) ScrollToNewest() {}

// KeyEvent is a key press reported by a surface
type KeyEvent struct {
	Key      string
	Modifier bool // secondary modifier held (shift/alt)
}

// Reply is the outcome of a Request
type Reply struct {
	Seq     uint64
	Content string
	Err     error
}

// Request performs the API call for an accepted submission. The caller runs
// it away from the event loop and feeds the Reply back through Resolve.
type Request func(ctx context.Context) Reply

// ErrorExpiry tells the driver to call ExpireError(Generation) after After
type ErrorExpiry struct {
	Generation uint64
	After      time.Duration
}

// State is a snapshot of the view
type State struct {
	Messages  []models.Message
	Draft     string
	Pending   bool
	LastError string
	SessionID string
}

// Empty reports whether the conversation has no messages yet
func (s State) Empty() bool {
	return len(s.Messages) == 0
}

// View is the conversation state holder
type View struct {
	mu          sync.Mutex
	sender      Sender
	surface     Surface
	now         func() time.Time
	errorWindow time.Duration
	sessionID   string
	logger      *logging.Logger

	messages  []models.Message
	draft     string
	pending   bool
	lastError string

	lastID    uint64
	inflight  uint64 // ID of the user message awaiting a reply
	errorGen  uint64
	lastStamp time.Time
}

// Option configures a View
type Option func(*View)

// WithClock overrides the time source used for message timestamps
func WithClock(now func() time.Time) Option {
	return func(v *View) {
		v.now = now
	}
}

// WithErrorWindow sets how long a failure stays in LastError
func WithErrorWindow(d time.Duration) Option {
	return func(v *View) {
		if d > 0 {
			v.errorWindow = d
		}
	}
}

// WithSessionID sets the session identifier used in logs
func WithSessionID(id string) Option {
	return func(v *View) {
		v.sessionID = id
	}
}

// WithLogger sets the debug logger
func WithLogger(l *logging.Logger) Option {
	return func(v *View) {
		v.logger = l
	}
}

// New creates an empty conversation view
func New(sender Sender, surface Surface, opts ...Option) *View {
	if surface == nil {
		surface = nopSurface{}
	}

	v := &View{
		sender:      sender,
		surface:     surface,
		now:         time.Now,
		errorWindow: DefaultErrorWindow,
		sessionID:   uuid.NewString(),
		messages:    []models.Message{},
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// SetSurface replaces the display surface
func (v *View) SetSurface(surface Surface) {
	if surface == nil {
		surface = nopSurface{}
	}
	v.mu.Lock()
	v.surface = surface
	v.mu.Unlock()
}

// SessionID returns the conversation's session identifier
func (v *View) SessionID() string {
	return v.sessionID
}

// State returns a snapshot of the current state
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Messages returns a copy of the message list in display order
func (v *View) Messages() []models.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Message, len(v.messages))
	copy(out, v.messages)
	return out
}

// Pending reports whether a request is outstanding
func (v *View) Pending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending
}

// LastError returns the message of the most recent failure still on display
func (v *View) LastError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastError
}

// Draft returns the current input text
func (v *View) Draft() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

// SetDraft mirrors the surface's input widget. It does not notify the
// surface, since the draft originates there.
func (v *View) SetDraft(text string) {
	v.mu.Lock()
	v.draft = text
	v.mu.Unlock()
}

// LastReply returns the content of the newest assistant message
func (v *View) LastReply() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := len(v.messages) - 1; i >= 0; i-- {
		if v.messages[i].IsAssistant() {
			return v.messages[i].Content, true
		}
	}
	return "", false
}

// Submit appends the trimmed text as a user message and returns the request
// that will fetch the reply. Empty input, or input while a request is
// pending, is rejected without touching state.
func (v *View) Submit(text string) (Request, bool) {
	content := strings.TrimSpace(text)

	v.mu.Lock()
	if content == "" || v.pending {
		v.mu.Unlock()
		return nil, false
	}

	msg := v.appendLocked(models.RoleUser, content)
	v.draft = ""
	v.pending = true
	v.lastError = ""
	v.inflight = msg.ID
	sender := v.sender
	surface := v.surface
	state := v.snapshotLocked()
	v.mu.Unlock()

	v.logger.Infof("session=%s submit id=%d len=%d", v.sessionID, msg.ID, len(content))

	surface.Refresh(state)
	surface.ScrollToNewest()

	seq := msg.ID
	return func(ctx context.Context) Reply {
		if ctx == nil {
			ctx = context.Background()
		}
		if sender == nil {
			return Reply{Seq: seq, Err: fmt.Errorf("no chat backend configured")}
		}
		reply, err := sender.Send(ctx, content)
		return Reply{Seq: seq, Content: reply, Err: err}
	}, true
}

// HandleSubmitKey submits the draft when the send key is pressed without the
// modifier. While a request is pending the key is consumed and ignored. Any
// other combination is left to the surface (handled == false).
func (v *View) HandleSubmitKey(ev KeyEvent) (Request, bool) {
	if ev.Key != KeySubmit || ev.Modifier {
		return nil, false
	}

	v.mu.Lock()
	pending := v.pending
	draft := v.draft
	v.mu.Unlock()

	if pending {
		return nil, true
	}

	req, _ := v.Submit(draft)
	return req, true
}

// Resolve applies the outcome of the in-flight request. Replies that do not
// belong to it are dropped. On failure the returned ErrorExpiry says when
// ExpireError should run.
func (v *View) Resolve(r Reply) (ErrorExpiry, bool) {
	v.mu.Lock()
	if !v.pending || r.Seq != v.inflight {
		v.mu.Unlock()
		v.logger.Debugf("session=%s dropped stale reply seq=%d", v.sessionID, r.Seq)
		return ErrorExpiry{}, false
	}

	v.pending = false
	v.inflight = 0
	surface := v.surface

	if r.Err != nil {
		v.errorGen++
		v.lastError = apierrors.UserMessage(r.Err)
		expiry := ErrorExpiry{Generation: v.errorGen, After: v.errorWindow}
		state := v.snapshotLocked()
		v.mu.Unlock()

		v.logger.Errorf("session=%s request seq=%d failed: %v", v.sessionID, r.Seq, r.Err)
		surface.Refresh(state)
		return expiry, true
	}

	msg := v.appendLocked(models.RoleAssistant, r.Content)
	state := v.snapshotLocked()
	v.mu.Unlock()

	v.logger.Infof("session=%s reply id=%d for seq=%d len=%d", v.sessionID, msg.ID, r.Seq, len(r.Content))
	surface.Refresh(state)
	surface.ScrollToNewest()
	return ErrorExpiry{}, false
}

// ExpireError clears LastError if it is still the error of generation gen
func (v *View) ExpireError(gen uint64) bool {
	v.mu.Lock()
	if gen != v.errorGen || v.lastError == "" {
		v.mu.Unlock()
		return false
	}
	v.lastError = ""
	surface := v.surface
	state := v.snapshotLocked()
	v.mu.Unlock()

	surface.Refresh(state)
	return true
}

// DismissError clears LastError immediately
func (v *View) DismissError() bool {
	v.mu.Lock()
	if v.lastError == "" {
		v.mu.Unlock()
		return false
	}
	v.lastError = ""
	surface := v.surface
	state := v.snapshotLocked()
	v.mu.Unlock()

	surface.Refresh(state)
	return true
}

// appendLocked adds a message with the next ID and a timestamp that never
// goes backwards. v.mu must be held.
func (v *View) appendLocked(role models.Role, content string) models.Message {
	ts := v.now()
	if ts.Before(v.lastStamp) {
		ts = v.lastStamp
	}
	v.lastStamp = ts
	v.lastID++

	msg := models.Message{
		ID:        v.lastID,
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}
	v.messages = append(v.messages, msg)
	return msg
}

func (v *View) snapshotLocked() State {
	msgs := make([]models.Message, len(v.messages))
	copy(msgs, v.messages)
	return State{
		Messages:  msgs,
		Draft:     v.draft,
		Pending:   v.pending,
		LastError: v.lastError,
		SessionID: v.sessionID,
	}
}
