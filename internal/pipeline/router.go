package pipeline

// Routing decisions returned by Route and by Router.Decide.
const (
	RouteRetry    = "retry"
	RouteContinue = "continue"
)

// Route is the single retry decision used by every validation loop.
// It is total and pure: continue when the attempt passed or the budget is
// spent, retry otherwise. Exhaustion is not an error; the run proceeds
// with the best candidate recorded so far.
func Route(attempts, maxAttempts int, passed bool) string {
	if passed || attempts >= maxAttempts {
		return RouteContinue
	}
	return RouteRetry
}

// RetryPolicy bounds a conditional edge. MaxAttempts > 0 declares the loop
// bounded, which is what lets Compile accept the cycle the router creates.
type RetryPolicy struct {
	MaxAttempts int
}

// Bounded reports whether the policy caps its loop.
func (p RetryPolicy) Bounded() bool { return p.MaxAttempts > 0 }

// Router is a named conditional edge. Decide inspects the pipeline Context
// and returns a decision string; Targets maps each decision to the next
// stage. Decide must be pure with respect to the Context — routers never
// mutate state, never perform I/O, and never count attempts themselves.
type Router struct {
	Name    string
	Policy  RetryPolicy
	Decide  func(pc *Context) string
	Targets map[string]string
}
