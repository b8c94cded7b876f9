package remote

import "context"

// Offline is used when no remote is configured. Every call fails with
// ErrOffline.
type Offline struct{}

var _ Remote = Offline{}

func (Offline) SignUp(context.Context, string, string) (SignUpResult, error) {
	return SignUpResult{}, ErrOffline
}

func (Offline) SignInWithPassword(context.Context, string, string) (Session, error) {
	return Session{}, ErrOffline
}

func (Offline) GetSession(context.Context) (Session, error) {
	return Session{}, ErrOffline
}

func (Offline) SignOut(context.Context) error {
	return nil
}

func (Offline) OnSessionChange(SessionListener) func() {
	return func() {}
}

func (Offline) Upsert(context.Context, Row) error {
	return ErrOffline
}

func (Offline) Get(context.Context, string) (Row, error) {
	return Row{}, ErrOffline
}

func (Offline) Update(context.Context, string, Patch) error {
	return ErrOffline
}

func (Offline) Close() {}
