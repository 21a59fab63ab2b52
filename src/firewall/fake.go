package firewall

// Fake is an in-memory Manager for unit tests.
type Fake struct {
	Present bool
	Active  bool
	Rules   map[int]string // port -> comment
	FailOn  map[string]error
}

func NewFake() *Fake {
	return &Fake{Present: true, Active: true, Rules: map[int]string{}, FailOn: map[string]error{}}
}

var _ Manager = (*Fake)(nil)

func (f *Fake) Available() bool { return f.Present }

func (f *Fake) Enabled() (bool, error) {
	if err := f.FailOn["enabled"]; err != nil {
		return false, err
	}
	return f.Active, nil
}

func (f *Fake) Allow(port int, comment string) error {
	if err := f.FailOn["allow"]; err != nil {
		return err
	}
	f.Rules[port] = comment
	return nil
}

func (f *Fake) Deny(port int) error {
	if err := f.FailOn["deny"]; err != nil {
		return err
	}
	delete(f.Rules, port)
	return nil
}
