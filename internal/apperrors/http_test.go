package apperrors

import (
	"errors"
	"strings"
	"testing"
)

func TestFromHTTPStatus(t *testing.T) {
	cause := errors.New("upstream")
	cases := []struct {
		code int
		kind Kind
	}{
		{400, KindBadRequest},
		{401, KindAuth},
		{403, KindAuth},
		{404, KindBadRequest},
		{429, KindRateLimit},
		{500, KindTransient},
		{503, KindTransient},
		{418, KindBadRequest},
	}
	for _, tc := range cases {
		err := FromHTTPStatus("Cloud Translation", tc.code, cause)
		if kind, _ := KindOf(err); kind != tc.kind {
			t.Errorf("code %d: kind = %q, want %q", tc.code, kind, tc.kind)
		}
		if !errors.Is(err, cause) {
			t.Errorf("code %d: cause not retained", tc.code)
		}
		if !strings.HasPrefix(err.Error(), "Cloud Translation") {
			t.Errorf("code %d: message %q does not name the service", tc.code, err.Error())
		}
	}
}
