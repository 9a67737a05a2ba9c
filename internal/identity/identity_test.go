package identity

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledRejectsEveryToken(t *testing.T) {
	for _, tok := range []string{"", "abc.def.ghi"} {
		id, err := Disabled{}.Verify(context.Background(), tok)
		if !errors.Is(err, ErrDisabled) || id != nil {
			t.Errorf("Verify(%q) = %v, %v; want nil, ErrDisabled", tok, id, err)
		}
	}
}
