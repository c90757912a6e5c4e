/*
Package runtime implements the briefing conversation engine.

The Engine is stateless: every operation takes a *domain.Session, works on a
copy and returns the next session. It never sleeps. Pauses in the
conversation (the typing indicator, the process card, the read delay before
an automatic advance) are recorded as a domain.Pending with a due time, and
Tick applies whatever is due at a given instant, chaining follow-up delays
from the previous due time so late ticks do not drift.

	e, _ := runtime.NewEngine(wizard.MustFlow(),
		runtime.WithProcessCard(wizard.ProcessCard()),
		runtime.WithSeedResolver(wizard.ResolvePackage),
	)
	s, _ := e.Start(ctx, "id", domain.Seed{})
	s, _ = e.Tick(ctx, s, time.Now().Add(time.Second))
	s, _ = e.SubmitText(ctx, s, "Ana")
	view := e.Render(s)

Answers are validated with the step's validator. Under PolicyHard a failed
answer re-prompts with the text prefilled; under PolicyAdvisory the field
keeps its previous value and the notice is shown alongside the next step. A cleaned suggestion is
offered as a correction the visitor accepts or retypes.

Restart and review reset the session into a new epoch. Finish is only
accepted on the summary step and produces the handoff link.
*/
package runtime
