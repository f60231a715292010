package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/hbs/hbs"
)

func TestReport(t *testing.T) {
	t.Parallel()

	_, syntaxErr := hbs.Compile(t.Context(), "ok\n  {{#each}}")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain",
			err:  errors.New("boom"),
			want: "page.hbs: boom\n",
		},
		{
			name: "located",
			err:  syntaxErr,
			want: "page.hbs:2:3: " + syntaxErr.Error() + "\n" +
				"  2 |   {{#each}}\n" +
				"        ^\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			report(&buf, "page.hbs", tt.err)

			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("report mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
