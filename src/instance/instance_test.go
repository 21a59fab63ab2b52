package instance_test

import (
	"errors"
	"strings"
	"testing"

	"openclaw-manager/src/instance"
)

func TestValidateName_OK(t *testing.T) {
	for _, name := range []string{"worker1", "dev-box", "a", "my_agent", "W0rker-2"} {
		if err := instance.ValidateName(name); err != nil {
			t.Fatalf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
}

func TestValidateName_Rejected(t *testing.T) {
	bad := []string{
		"",
		"main",
		"../etc",
		"a/b",
		"a b",
		"worker;rm -rf",
		"worker$",
		".hidden",
		strings.Repeat("x", instance.MaxNameLength+1),
	}
	for _, name := range bad {
		err := instance.ValidateName(name)
		if !errors.Is(err, instance.ErrInvalidName) {
			t.Fatalf("ValidateName(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}
