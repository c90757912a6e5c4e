package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/phdev/briefing/internal/logging"
	"github.com/phdev/briefing/internal/presentation/tui"
	"github.com/phdev/briefing/internal/runtime"
	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/ports"
)

// Chat drives one conversation from a line-oriented terminal.
//
// Commands start with a slash: /restart, /review, /finish, /accept,
// /retype, /help and /quit. Any other line answers the live step: a number
// or an option label picks (or, on a checklist, toggles) that option, an
// empty line confirms a checklist, and free text answers a text step.
type Chat struct {
	conv      ports.Conversation
	in        io.Reader
	out       io.Writer
	render    tui.Renderer
	logger    *slog.Logger
	seed      domain.Seed
	sessionID string

	printed int
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithRenderer sets how bot text is drawn. Defaults to tui.Plain.
func WithRenderer(r tui.Renderer) ChatOption {
	return func(c *Chat) {
		if r != nil {
			c.render = r
		}
	}
}

// WithSeed starts the conversation with external context.
func WithSeed(seed domain.Seed) ChatOption {
	return func(c *Chat) {
		c.seed = seed
	}
}

// WithSessionID resumes a stored session instead of starting a new one.
func WithSessionID(id string) ChatOption {
	return func(c *Chat) {
		c.sessionID = id
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ChatOption {
	return func(c *Chat) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChat creates a chat reading answers from in and writing to out.
func NewChat(conv ports.Conversation, in io.Reader, out io.Writer, opts ...ChatOption) *Chat {
	c := &Chat{
		conv:   conv,
		in:     in,
		out:    out,
		render: tui.Plain,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the session being driven, once Run has opened it.
func (c *Chat) SessionID() string {
	return c.sessionID
}

// Run plays the conversation until it finishes, input ends or ctx is done.
// It returns the last view.
func (c *Chat) Run(ctx context.Context) (domain.View, error) {
	view, err := c.open(ctx)
	if err != nil {
		return domain.View{}, err
	}
	c.sessionID = view.SessionID
	c.logger.Info("Chat session active", "session_id", view.SessionID)

	views, unsubscribe, err := c.conv.Subscribe(ctx, view.SessionID)
	if err != nil {
		return view, err
	}
	defer unsubscribe()

	// The first transition may have fired before the subscription.
	if view, err = c.conv.View(ctx, view.SessionID); err != nil {
		return view, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, c.in)
	for {
		view, err = c.settle(ctx, view, views)
		if err != nil {
			return view, err
		}
		if view.Finished {
			c.printHandoff(view)
			return view, nil
		}
		c.prompt(view)

		drain(views)
		var line string
		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return view, nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "/quit" || line == "/q" {
			fmt.Fprintf(c.out, ">>> Sessão '%s' salva. Até logo!\n", view.SessionID)
			return view, nil
		}
		if line == "/help" {
			c.help()
			continue
		}

		next, err := c.dispatch(ctx, view, line)
		if err != nil {
			if !c.recoverable(err) {
				return view, err
			}
			fmt.Fprintf(c.out, "⚠️  %s\n", describe(err))
			// Advisory rejections and corrections land in the transcript.
			if next, err = c.conv.View(ctx, view.SessionID); err != nil {
				return view, err
			}
		}
		view = next
	}
}

func (c *Chat) open(ctx context.Context) (domain.View, error) {
	if c.sessionID == "" {
		return c.conv.Start(ctx, c.seed)
	}
	view, err := c.conv.View(ctx, c.sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.logger.Info("Session not found, starting a new one", "session_id", c.sessionID)
		return c.conv.Start(ctx, c.seed)
	}
	if err == nil {
		fmt.Fprintf(c.out, ">>> Retomando a conversa em '%s'...\n", view.StepID)
	}
	return view, err
}

// settle prints new turns until the session accepts input again.
func (c *Chat) settle(ctx context.Context, view domain.View, views <-chan domain.View) (domain.View, error) {
	c.printTurns(view)
	for view.Phase.Suspended() {
		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case next, ok := <-views:
			if !ok {
				return view, errors.New("session closed")
			}
			view = next
			c.printTurns(view)
		}
	}
	return view, nil
}

func (c *Chat) dispatch(ctx context.Context, view domain.View, line string) (domain.View, error) {
	id := view.SessionID
	if strings.HasPrefix(line, "/") {
		ctrl, err := domain.ParseControl(strings.TrimPrefix(line, "/"))
		if err != nil {
			return domain.View{}, err
		}
		return c.conv.Control(ctx, id, ctrl)
	}

	live, _ := view.LiveTurn()
	if view.Mode == domain.ModeMultiChoice && view.Correction == nil {
		if line == "" {
			return c.conv.Confirm(ctx, id)
		}
		if opt, ok := pick(live.Options, line); ok {
			return c.conv.Toggle(ctx, id, opt.Value)
		}
		return domain.View{}, fmt.Errorf("%w: %q", domain.ErrUnknownOption, line)
	}

	if len(live.Options) > 0 {
		if opt, ok := pick(live.Options, line); ok {
			return c.conv.SelectOption(ctx, id, opt.Value)
		}
		if view.Input == nil && view.Correction == nil {
			return domain.View{}, fmt.Errorf("%w: %q", domain.ErrUnknownOption, line)
		}
	}
	return c.conv.SubmitText(ctx, id, line)
}

// recoverable reports whether the chat can carry on after err.
func (c *Chat) recoverable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrUnknownOption),
		errors.Is(err, domain.ErrUnknownControl),
		errors.Is(err, domain.ErrWrongMode),
		errors.Is(err, domain.ErrNoCorrection),
		errors.Is(err, domain.ErrNotAtSummary),
		errors.Is(err, domain.ErrBusy):
		return true
	case errors.As(err, new(*domain.IncompleteError)),
		errors.As(err, new(*runtime.ValidationError)):
		return true
	}
	c.logger.Error("Chat failed", "session_id", c.sessionID, "err", err)
	return false
}

func describe(err error) string {
	var verr *runtime.ValidationError
	if errors.As(err, &verr) {
		return verr.Err.Error()
	}
	return err.Error()
}

func (c *Chat) printTurns(view domain.View) {
	if len(view.Turns) < c.printed {
		// Restart or review rewound the transcript.
		fmt.Fprintln(c.out, "\n--- recomeçando ---")
		c.printed = 0
	}
	for _, t := range view.Turns[c.printed:] {
		switch {
		case t.Author == domain.AuthorVisitor:
			// The visitor already sees what they typed.
		case t.Kind == domain.TurnProcessCard:
			fmt.Fprintf(c.out, "\n┌ %s\n", c.draw(t.Text))
		default:
			fmt.Fprintf(c.out, "\n%s\n", c.draw(t.Text))
		}
	}
	c.printed = len(view.Turns)
}

func (c *Chat) prompt(view domain.View) {
	live, _ := view.LiveTurn()
	if view.Mode == domain.ModeMultiChoice && view.Correction == nil {
		for i, o := range live.Options {
			mark := " "
			if slices.Contains(view.Selected, o.Value) {
				mark = "x"
			}
			fmt.Fprintf(c.out, "  %d) [%s] %s\n", i+1, mark, o.Label)
		}
		fmt.Fprintln(c.out, "  (número para marcar, Enter para confirmar)")
	} else {
		for i, o := range live.Options {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, o.Label)
		}
	}
	if view.Input != nil {
		if view.Input.Prefill != "" {
			fmt.Fprintf(c.out, "  (sugestão: %s)\n", view.Input.Prefill)
		}
		if view.Input.Optional {
			fmt.Fprintln(c.out, "  (opcional, Enter para pular)")
		}
	}
	fmt.Fprint(c.out, "> ")
}

func (c *Chat) printHandoff(view domain.View) {
	if view.HandoffURL == "" {
		return
	}
	fmt.Fprintf(c.out, "\n>>> Envie o briefing pelo WhatsApp:\n%s\n", view.HandoffURL)
}

func (c *Chat) help() {
	fmt.Fprintln(c.out, `Comandos:
  /restart  recomeçar do zero
  /review   revisar as respostas
  /finish   enviar o briefing (no resumo)
  /accept   aceitar a correção sugerida
  /retype   digitar de novo
  /quit     sair (a sessão fica salva)`)
}

func (c *Chat) draw(text string) string {
	out, err := c.render(text)
	if err != nil {
		c.logger.Debug("render failed, printing plain text", "err", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}

// pick resolves a 1-based index, a label or a value to an option.
func pick(opts []domain.Option, in string) (domain.Option, bool) {
	if n, err := strconv.Atoi(in); err == nil {
		if n >= 1 && n <= len(opts) {
			return opts[n-1], true
		}
		return domain.Option{}, false
	}
	for _, o := range opts {
		if strings.EqualFold(o.Value, in) || strings.EqualFold(o.Label, in) {
			return o, true
		}
	}
	return domain.Option{}, false
}

func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// drain discards views queued while the visitor was reading.
func drain(views <-chan domain.View) {
	for {
		select {
		case _, ok := <-views:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
