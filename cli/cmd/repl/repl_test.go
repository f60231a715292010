package repl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/hbs/hbs"
)

func testModel(opts Options) model {
	return newModel(context.Background(), NewHistory(""), opts)
}

func TestModel_Compile(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		commands []string
		input    string
		want     []string
		wantErr  error
	}{
		{
			name:  "go_view",
			input: "<b>{{name}}</b>",
			want:  []string{`f.Text("<b>")`, `f.Escape(name)`},
		},
		{
			name:  "root_option",
			opts:  Options{Root: "p"},
			input: "{{title}}",
			want:  []string{`f.Escape(p.title)`},
		},
		{
			name:     "ops_view",
			commands: []string{"view ops"},
			input:    "{{#if ok}}y{{/if}}",
			want:     []string{"if ok", "end"},
		},
		{
			name:     "paths_view",
			commands: []string{"view paths"},
			input:    "{{b.c}}{{a}}",
			want:     []string{"a\nb.c"},
		},
		{
			name:     "paths_view_empty",
			commands: []string{"view paths"},
			input:    "text",
			want:     []string{"(no paths)"},
		},
		{
			name:     "root_command",
			commands: []string{"root q"},
			input:    "{{x}}",
			want:     []string{`f.Escape(q.x)`},
		},
		{
			name:    "syntax_error_snippet",
			input:   "{{/if}}",
			want:    []string{"error: ", "  1 | {{/if}}", "^"},
			wantErr: hbs.ErrMismatchedBlock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(tt.opts)

			for _, c := range tt.commands {
				parts := strings.Fields(c)

				var err error
				if m, _, err = m.apply(parts[0], parts[1:]); err != nil {
					t.Fatalf("apply(%q): %v", c, err)
				}
			}

			got, err := m.compile(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("compile error = %v, want %v", err, tt.wantErr)
			}

			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q does not contain %q", got, w)
				}
			}
		})
	}
}

func TestModel_Apply(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		args    []string
		want    string
		wantErr error
	}{
		{"quit", "quit", nil, "", errQuit},
		{"clear", "clear", nil, "", errClear},
		{"help", "help", nil, "Commands", nil},
		{"view", "view", []string{"go"}, "view go", nil},
		{"bad_view", "view", []string{"html"}, "", ErrUnknownView},
		{"view_without_argument", "view", nil, "", ErrUnknownView},
		{"root_clear", "root", nil, "root cleared", nil},
		{"collapse_off", "collapse", []string{"off"}, "collapse off", nil},
		{"collapse_bad", "collapse", []string{"maybe"}, "", ErrUsage},
		{"unknown", "frobnicate", nil, "", ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reply, err := testModel(Options{}).apply(tt.cmd, tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("apply error = %v, want %v", err, tt.wantErr)
			}

			if !strings.Contains(reply, tt.want) {
				t.Errorf("reply %q does not contain %q", reply, tt.want)
			}
		})
	}
}

func TestModel_CollapseToggle(t *testing.T) {
	m := testModel(Options{Collapse: true})

	on, err := m.compile("<a> <b>")
	if err != nil {
		t.Fatal(err)
	}

	m, _, _ = m.apply("collapse", []string{"off"})

	off, err := m.compile("<a> <b>")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(on, `"<a><b>"`) || !strings.Contains(off, `"<a> <b>"`) {
		t.Errorf("collapse on = %q, off = %q", on, off)
	}
}

func TestModel_HistoryStep(t *testing.T) {
	m := testModel(Options{})

	_ = m.history.Write("{{a}}", modeTemplate)
	_ = m.history.Write("view ops", modeCtrl)
	_ = m.history.Write("{{b}}", modeTemplate)
	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, false)
	if m.input.Value() != "{{b}}" || m.mode != modeTemplate {
		t.Fatalf("step 1: %q mode %d", m.input.Value(), m.mode)
	}

	m = m.historyStep(-1, false)
	if m.input.Value() != "view ops" || m.mode != modeCtrl {
		t.Fatalf("step 2: %q mode %d", m.input.Value(), m.mode)
	}

	m = m.switchToMode(modeTemplate)
	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, true)
	m = m.historyStep(-1, true)
	if m.input.Value() != "{{a}}" || m.mode != modeTemplate {
		t.Fatalf("same mode step: %q mode %d", m.input.Value(), m.mode)
	}

	m = m.historyStep(1, true)
	m = m.historyStep(1, true)
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("past newest: %q at %d", m.input.Value(), m.historyIdx)
	}
}
