package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/hbs/hbs"
	"github.com/ardnew/hbs/log"
)

const (
	templatePrompt = "» "
	ctrlPrompt     = " :"
)

var helpRows = [][2]string{
	{"help", "show this text"},
	{"view go|ops|paths", "print results as Go statements, instructions, or context paths"},
	{"root [NAME]", "qualify top-level names with NAME (no NAME clears it)"},
	{"collapse on|off", "collapse whitespace between adjacent tags"},
	{"clear", "clear the screen"},
	{"quit", "leave the REPL"},
}

var helpKeys = [][2]string{
	{"Esc", "switch between template and command input"},
	{"Tab, Shift-Tab", "cycle completions inside {{ }}"},
	{"Space", "accept the highlighted completion"},
	{"Up, Down", "walk history across both modes"},
	{"Shift-Up, Shift-Down", "walk history in the current mode"},
	{"Ctrl-C, Ctrl-D", "quit from an empty line"},
}

func helpMessage() string {
	var b strings.Builder

	table := func(title string, rows [][2]string) {
		b.WriteString("\n" + title + "\n")

		for _, r := range rows {
			fmt.Fprintf(&b, "  %-22s %s\n", r[0], r[1])
		}
	}

	table("Commands:", helpRows)
	table("Keys:", helpKeys)

	return b.String()
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeTemplate inputMode = iota
	modeCtrl
)

// view selects how a compiled program is printed.
type view int

const (
	viewGo view = iota
	viewOps
	viewPaths
)

func parseView(s string) (view, error) {
	switch s {
	case "go":
		return viewGo, nil
	case "ops":
		return viewOps, nil
	case "paths":
		return viewPaths, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

var (
	bold = lipgloss.NewStyle().Bold(true)
	fg   = func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

	promptStyle        = bold.Foreground(lipgloss.Color("12"))
	ctrlPromptStyle    = bold.Foreground(lipgloss.Color("13"))
	inputStyle         = fg("7")
	resultStyle        = fg("10")
	errorStyle         = fg("9")
	hintStyle          = fg("8")
	suggestionStyle    = fg("14")
	matchStyle         = suggestionStyle.Bold(true).Underline(true)
	selectedStyle      = fg("0").Background(lipgloss.Color("14"))
	selectedMatchStyle = selectedStyle.Bold(true).Underline(true)
)

// echoLine renders an accepted input line above the next prompt.
func echoLine(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(templatePrompt) + inputStyle.Render(input)
}

// Options configures a REPL session.
type Options struct {
	Logger   log.Logger
	CacheDir string // History is kept in memory only when empty
	Root     string
	Collapse bool
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	templateText string
	templateCur  int
	ctrlText     string
	ctrlCursor   int
	root         string
	view         view
	collapse     bool
}

// Run starts an interactive session that compiles each entered template line
// and prints the result.
func Run(ctx context.Context, opts Options) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", opts.CacheDir),
		slog.String("root", opts.Root),
	)

	var path string
	if opts.CacheDir != "" {
		path = filepath.Join(opts.CacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		opts.Logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	opts.Logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, history, opts), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, history *History, opts Options) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(templatePrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		logger:     opts.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeTemplate,
		root:       opts.Root,
		collapse:   opts.Collapse,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(templatePrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(m.input.Value()) == "":
		hint := "Type a template or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: help, view, root, collapse, clear, quit (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeTemplate {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeTemplate), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step (1 forward, -1 backward), wrapping
// at either end. A sole candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	n := len(m.matches)

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n
	case step < 0:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = n - 1
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it. Deletions and
// cursor movement pass false so the user can edit freely.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := m.input.Value()

	input := strings.TrimSpace(raw)
	if input == "" {
		return m, nil
	}

	m.templateText = ""
	m.templateCur = 0
	m.ctrlText = ""
	m.ctrlCursor = 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Write(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not write history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl compile", slog.String("input", raw))

	echo := tea.Println(echoLine(modeTemplate, raw))

	out, err := m.compile(raw)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(out)))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// compile compiles src with the session settings and renders the result in
// the selected view. On failure the returned string describes the error,
// including a source snippet when the error has a location.
func (m model) compile(src string) (string, error) {
	prog, err := hbs.Compile(m.ctxFunc(), src,
		hbs.WithRoot(m.root),
		hbs.WithCollapse(m.collapse),
		hbs.WithLogger(m.logger),
	)
	if err != nil {
		msg := "error: " + err.Error()

		var se *hbs.SyntaxError
		if errors.As(err, &se) {
			msg += "\n" + strings.TrimRight(se.Snippet(), "\n")
		}

		return msg, err
	}

	switch m.view {
	case viewOps:
		return strings.TrimRight(prog.String(), "\n"), nil

	case viewPaths:
		paths, err := prog.Paths()
		if err != nil {
			return "error: " + err.Error(), err
		}

		if len(paths) == 0 {
			return "(no paths)", nil
		}

		return strings.Join(paths, "\n"), nil

	default:
		return strings.TrimRight(prog.Go(hbs.DefaultSink), "\n"), nil
	}
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(echoLine(modeCtrl, input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	var (
		reply string
		err   error
	)

	m, reply, err = m.apply(cmd, args)

	switch {
	case errors.Is(err, errQuit):
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case errors.Is(err, errClear):
		return m, tea.ClearScreen

	case err != nil:
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(reply)))
}

var (
	errQuit  = errors.New("quit")
	errClear = errors.New("clear")
)

// apply runs a command-mode command and returns the updated model with a
// reply. Quit and clear are reported through errQuit and errClear.
func (m model) apply(cmd string, args []string) (model, string, error) {
	switch cmd {
	case "q", "quit", "exit":
		return m, "", errQuit

	case "c", "clear":
		return m, "", errClear

	case "h", "help":
		return m, helpMessage(), nil

	case "v", "view":
		if len(args) != 1 {
			return m, "", fmt.Errorf("%w: %q", ErrUnknownView, strings.Join(args, " "))
		}

		v, err := parseView(args[0])
		if err != nil {
			return m, "", err
		}

		m.view = v

		return m, "view " + args[0], nil

	case "r", "root":
		m.root = strings.Join(args, "")
		if m.root == "" {
			return m, "root cleared", nil
		}

		return m, "root " + m.root, nil

	case "collapse":
		if len(args) == 1 {
			switch args[0] {
			case "on":
				m.collapse = true

				return m, "collapse on", nil
			case "off":
				m.collapse = false

				return m, "collapse off", nil
			}
		}

		return m, "", fmt.Errorf("%w: collapse %s", ErrUsage, strings.Join(args, " "))
	}

	return m, "", fmt.Errorf("%w: %s (try 'help')", ErrUnknownCommand, cmd)
}

// historyStep moves through history by step. With sameMode set only entries
// of the current mode are visited; otherwise the mode follows the entry.
// Stepping past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to the specified mode, preserving each mode's input.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeTemplate {
		m.templateText = m.input.Value()
		m.templateCur = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeTemplate {
		m.input.Prompt = promptStyle.Render(templatePrompt)
		m.input.SetValue(m.templateText)
		m.input.SetCursor(m.templateCur)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
