package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/batalabs/promptpad/internal/config"
	"github.com/batalabs/promptpad/internal/domain"
	"github.com/batalabs/promptpad/internal/editor"
	"github.com/batalabs/promptpad/internal/paste"
	"github.com/batalabs/promptpad/internal/store"
	"github.com/batalabs/promptpad/internal/textwidth"
)

// rapidKeyInterval is the gap below which consecutive keys are assumed to
// come from a paste on terminals without bracketed paste.
const rapidKeyInterval = 5 * time.Millisecond

// defaultHistoryShown is how many entries /history lists without a count.
const defaultHistoryShown = 10

// ---------------------------------------------------------------------------
// Bubble Tea message types
// ---------------------------------------------------------------------------

// HistoryLoadedMsg carries submissions read from the store at startup.
type HistoryLoadedMsg struct {
	Items []string
	Err   error
}

// SubmissionSavedMsg reports the result of persisting a submission.
type SubmissionSavedMsg struct {
	Sub     *domain.Submission
	Trimmed int
	Err     error
}

// Bridge receives every submitted prompt. The returned command, if any, is
// run by the program.
type Bridge interface {
	Submit(sub domain.Submission) tea.Cmd
}

// BridgeFunc adapts a function to Bridge.
type BridgeFunc func(sub domain.Submission) tea.Cmd

// Submit calls f.
func (f BridgeFunc) Submit(sub domain.Submission) tea.Cmd { return f(sub) }

// Options configures InitialModel.
type Options struct {
	Version     string
	ProjectPath string
	InitialText string

	// Fullscreen runs on the alternate screen with mouse reporting.
	Fullscreen bool
	// ExitOnSubmit quits after the first submission; see Model.Submitted.
	ExitOnSubmit bool

	Store  *store.Store
	Logger *config.Logger
	Bridge Bridge
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is the Bubble Tea host around the prompt editor.
type Model struct {
	editor editor.Editor
	paste  paste.Coalescer
	keys   KeyMap
	help   help.Model

	Prefs  config.Preferences
	Store  *store.Store
	Bridge Bridge
	logger *config.Logger

	version      string
	projectPath  string
	fullscreen   bool
	exitOnSubmit bool
	submitted    string
	quitting     bool
	notice       string

	history      []string
	historyIdx   int
	historyDraft editor.Editor

	completions   []string
	completionIdx int
	completionOn  bool

	picker *HistoryPicker

	width  int
	height int

	lastKeypressTime time.Time
	now              func() time.Time
}

// InitialModel builds the host model.
func InitialModel(prefs config.Preferences, opts Options) Model {
	m := Model{
		paste:        paste.New(prefs.PasteDebounce()),
		keys:         DefaultKeyMap,
		help:         help.New(),
		Prefs:        prefs,
		Store:        opts.Store,
		Bridge:       opts.Bridge,
		logger:       opts.Logger,
		version:      opts.Version,
		projectPath:  opts.ProjectPath,
		fullscreen:   opts.Fullscreen,
		exitOnSubmit: opts.ExitOnSubmit,
		historyIdx:   -1,
		width:        80,
		now:          time.Now,
	}
	if m.projectPath == "" {
		m.projectPath = MustGetwd()
	}
	m.help.Width = m.width
	m.editor = editor.New(m.inputWidth(), m.inputHeight()).WithCollapseThreshold(prefs.CollapseThreshold)
	if opts.InitialText != "" {
		m.editor = m.editor.Insert(opts.InitialText)
	}
	return m
}

// Init loads the submission history when persistence is on.
func (m Model) Init() tea.Cmd {
	m.logger.Printf("init: project=%s threshold=%d debounce=%s", m.projectPath, m.Prefs.CollapseThreshold, m.paste.Interval())
	return m.loadHistoryCmd()
}

// Editor returns the current editor value.
func (m Model) Editor() editor.Editor { return m.editor }

// Submitted returns the text submitted when the model runs with
// ExitOnSubmit, or "" when the user quit without submitting.
func (m Model) Submitted() string { return m.submitted }

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.editor = m.editor.Resize(m.inputWidth(), m.inputHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case paste.FlushMsg:
		var f *paste.Flush
		m.paste, f = m.paste.Fire(msg)
		m.applyFlush(f)
		return m, nil

	case PasteMsg:
		return m.handlePaste(msg)

	case ClipboardWriteMsg:
		return m.handleClipboardWrite(msg)

	case HistoryLoadedMsg:
		if msg.Err != nil {
			m.logger.Printf("history: load: %v", msg.Err)
			return m, m.print(m.renderError("Could not load history: " + msg.Err.Error()))
		}
		m.history = append(msg.Items, m.history...)
		m.trimHistory()
		return m, nil

	case SubmissionSavedMsg:
		if msg.Err != nil {
			m.logger.Printf("history: save: %v", msg.Err)
			return m, m.print(m.renderError("Could not save history: " + msg.Err.Error()))
		}
		if msg.Trimmed > 0 {
			m.logger.Printf("history: trimmed %d old entries", msg.Trimmed)
		}
		return m, nil
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Key handler
// ---------------------------------------------------------------------------

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	rapid := !m.lastKeypressTime.IsZero() && now.Sub(m.lastKeypressTime) < rapidKeyInterval
	m.lastKeypressTime = now

	if m.picker.IsActive() {
		return m.handlePickerKey(msg)
	}
	if fragment, ok := pasteFragment(msg, rapid); ok {
		return m.addPasteFragment(fragment)
	}
	if key.Matches(msg, m.keys.Quit) && !m.completionOn {
		return m.quit()
	}
	// A regular key settles any paste still waiting for its timer so the
	// key applies after the pasted text.
	m.flushPaste()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.dismissCompletions()
		return m, nil

	case key.Matches(msg, m.keys.EOF):
		if m.editor.IsEmpty() {
			return m.quit()
		}

	case key.Matches(msg, m.keys.Dismiss):
		m.dismissCompletions()
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		if line, ok := m.editor.CommandLine(); ok {
			if !m.completionOn {
				m.completions = ComputeCompletions(line)
				if len(m.completions) > 0 {
					m.completionOn = true
					m.completionIdx = 0
					m.setCommandLine(m.completions[0])
				}
			} else if len(m.completions) > 0 {
				m.completionIdx = (m.completionIdx + 1) % len(m.completions)
				m.setCommandLine(m.completions[m.completionIdx])
			}
			return m, nil
		}

	case key.Matches(msg, m.keys.CompletePrev):
		if m.completionOn && len(m.completions) > 0 {
			m.completionIdx = (m.completionIdx - 1 + len(m.completions)) % len(m.completions)
			m.setCommandLine(m.completions[m.completionIdx])
		}
		return m, nil

	case key.Matches(msg, m.keys.Newline):
		m.dismissCompletions()
		m.editor = m.editor.Insert("\n")
		m.resetHistory()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.completionOn {
			selected, _ := m.editor.CommandLine()
			m.dismissCompletions()
			if CommandExpectsArgs(selected) {
				m.setCommandLine(selected + " ")
				return m, nil
			}
		}
		return m.submit()

	case key.Matches(msg, m.keys.Toggle):
		m.dismissCompletions()
		if b, ok := m.editor.State().BlockAtCursor(); ok {
			m.logger.Printf("block: toggle #%d (expanded=%v)", b.ID, !b.Expanded)
		}
		m.editor = m.editor.ToggleBlockAtCursor()
		return m, nil

	case key.Matches(msg, m.keys.Paste):
		m.dismissCompletions()
		return m, ReadClipboardCmd()

	case key.Matches(msg, m.keys.Copy):
		return m, WriteClipboardCmd(m.editor.ExpandAllBlocks())

	case msg.Type == tea.KeyUp && !msg.Alt && m.editor.OnFirstRow():
		m.dismissCompletions()
		m.browseHistoryBack()
		return m, nil

	case msg.Type == tea.KeyDown && !msg.Alt && m.historyIdx != -1 && m.editor.OnLastRow():
		m.dismissCompletions()
		m.browseHistoryForward()
		return m, nil
	}

	m.dismissCompletions()
	before := m.editor.Text()
	m.editor = m.editor.HandleKey(toEditorKey(msg))
	if m.editor.Text() != before {
		m.resetHistory()
	}
	return m, nil
}

// pasteFragment reports whether msg is part of a paste and returns the
// text it contributes. Bracketed pastes are always fragments; without them
// only text keys arriving in a rapid burst are.
func pasteFragment(msg tea.KeyMsg, rapid bool) (string, bool) {
	if msg.Paste && msg.Type == tea.KeyRunes {
		return filterNulls(msg.Runes), true
	}
	if !rapid || msg.Alt {
		return "", false
	}
	switch msg.Type {
	case tea.KeyRunes:
		return filterNulls(msg.Runes), true
	case tea.KeyEnter:
		return "\n", true
	case tea.KeySpace:
		return " ", true
	case tea.KeyTab:
		return "\t", true
	}
	return "", false
}

func (m Model) addPasteFragment(fragment string) (tea.Model, tea.Cmd) {
	m.dismissCompletions()
	if m.paste.Pending() && m.paste.Anchor() != m.editor.Cursor() {
		m.flushPaste()
	}
	var prev *paste.Flush
	m.paste, prev = m.paste.Add(fragment, m.editor.Cursor())
	m.applyFlush(prev)
	return m, m.paste.Schedule()
}

// flushPaste applies the pending paste right away.
func (m *Model) flushPaste() {
	var f *paste.Flush
	m.paste, f = m.paste.Take()
	m.applyFlush(f)
}

func (m *Model) applyFlush(f *paste.Flush) {
	if f == nil || f.Text == "" {
		return
	}
	before := len(m.editor.State().Blocks())
	m.editor = m.editor.InsertAt(f.At, f.Text)
	collapsed := len(m.editor.State().Blocks()) > before
	m.logger.Printf("paste: %d fragments, %d lines, collapsed=%v", f.Fragments, f.Lines(), collapsed)
	m.resetHistory()
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.flushPaste()
		m.editor = m.editor.Scroll(-1)
	case tea.MouseButtonWheelDown:
		m.flushPaste()
		m.editor = m.editor.Scroll(1)
	case tea.MouseButtonLeft:
		if msg.Y < 0 || msg.Y >= m.visibleRows(m.editor.Snapshot()) {
			return m, nil
		}
		m.flushPaste()
		m.dismissCompletions()
		m.editor = m.editor.Click(msg.Y, msg.X-m.promptWidth())
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.paste = m.paste.Cancel()
	m.quitting = true
	m.logger.Printf("quit")
	return m, tea.Quit
}

func (m *Model) dismissCompletions() {
	m.completionOn = false
	m.completions = nil
	m.completionIdx = 0
}

// setCommandLine replaces the last line of the input with s.
func (m *Model) setCommandLine(s string) {
	if m.editor.State().LineCount() > 1 {
		m.editor = m.editor.DropLastLine().Insert("\n" + s)
		return
	}
	m.editor = m.editor.SetText(s)
}

// filterNulls removes null bytes from runes before appending to input.
func filterNulls(runes []rune) string {
	clean := make([]rune, 0, len(runes))
	for _, r := range runes {
		if r != 0 {
			clean = append(clean, r)
		}
	}
	return string(clean)
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

// submit runs a trailing slash command or hands the expanded text to the
// bridge. Commands on the last line act on the lines above them.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if line, ok := m.editor.CommandLine(); ok {
		name := strings.ToLower(strings.Fields(line)[0])
		if _, known := domain.LookupCommand(name); known || m.editor.State().LineCount() == 1 {
			m.editor = m.editor.DropLastLine()
			return m.handleSlashCommand(line)
		}
	}

	text := strings.TrimRight(m.editor.ExpandAllBlocks(), " \t\n")
	if strings.TrimSpace(text) == "" {
		m.editor = m.editor.SetText("")
		return m, nil
	}

	sub := domain.Submission{
		ID:          domain.NewUUID(),
		ProjectPath: m.projectPath,
		Text:        text,
		CreatedAt:   time.Now(),
	}
	if n := len(m.history); n == 0 || m.history[n-1] != text {
		m.history = append(m.history, text)
		m.trimHistory()
	}
	m.resetHistory()
	m.editor = m.editor.SetText("")
	m.logger.Printf("submit: %s", summarizeForLog(text))

	if m.exitOnSubmit {
		m.submitted = text
		m.paste = m.paste.Cancel()
		m.quitting = true
		return m, tea.Sequence(m.saveSubmissionCmd(text), tea.Quit)
	}

	cmds := []tea.Cmd{m.print(FormatSubmission(text, m.width))}
	if m.Bridge != nil {
		cmds = append(cmds, m.Bridge.Submit(sub))
	}
	cmds = append(cmds, m.saveSubmissionCmd(text))
	return m, tea.Batch(cmds...)
}

func (m Model) historyEnabled() bool {
	return m.Store != nil && m.Prefs.HistoryEnabled
}

func (m Model) loadHistoryCmd() tea.Cmd {
	if !m.historyEnabled() {
		return nil
	}
	st, project, limit := m.Store, m.projectPath, m.Prefs.HistoryLimit
	return func() tea.Msg {
		subs, err := st.RecentSubmissions(project, limit)
		if err != nil {
			return HistoryLoadedMsg{Err: err}
		}
		items := make([]string, len(subs))
		for i, s := range subs {
			items[i] = s.Text
		}
		return HistoryLoadedMsg{Items: items}
	}
}

func (m Model) saveSubmissionCmd(text string) tea.Cmd {
	if !m.historyEnabled() {
		return nil
	}
	st, project, limit := m.Store, m.projectPath, m.Prefs.HistoryLimit
	return func() tea.Msg {
		sub, err := st.AppendSubmission(project, text)
		if err != nil {
			return SubmissionSavedMsg{Err: err}
		}
		trimmed := 0
		if limit > 0 {
			trimmed, err = st.TrimSubmissions(project, limit)
		}
		return SubmissionSavedMsg{Sub: sub, Trimmed: trimmed, Err: err}
	}
}

// ---------------------------------------------------------------------------
// History picker
// ---------------------------------------------------------------------------

// handlePickerKey intercepts all keys when the history picker is active.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.Mode() == pickerConfirmDelete {
		return m.handlePickerDelete(msg)
	}
	return m.handlePickerBrowse(msg)
}

func (m Model) handlePickerBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.picker.Dismiss()
		m.picker = nil
		return m, nil

	case tea.KeyEnter:
		sel := m.picker.Selected()
		if sel == nil {
			return m, nil
		}
		text := sel.Text
		m.picker.Dismiss()
		m.picker = nil
		m.editor = m.editor.SetText(text)
		m.resetHistory()
		return m, nil

	case tea.KeyUp:
		m.picker.MoveUp()
		return m, nil

	case tea.KeyDown:
		m.picker.MoveDown()
		return m, nil

	case tea.KeyBackspace, tea.KeyDelete:
		m.picker.BackspaceFilter()
		return m, nil

	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			runes := msg.Runes
			if msg.Type == tea.KeySpace {
				runes = []rune{' '}
			}
			// 'd' starts delete only when the filter is empty
			if len(runes) == 1 && runes[0] == 'd' && m.picker.Filter() == "" {
				m.picker.StartDelete()
				return m, nil
			}
			for _, r := range runes {
				m.picker.AppendFilter(r)
			}
		}
		return m, nil
	}
}

func (m Model) handlePickerDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.picker.CancelMode()
		return m, nil
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			switch msg.Runes[0] {
			case 'y', 'Y':
				sub, ok := m.picker.RemoveSelected()
				if !ok {
					return m, nil
				}
				m.dropFromHistory(sub.Text)
				if sub.ID != "" && m.Store != nil {
					if err := m.Store.DeleteSubmission(sub.ID); err != nil {
						m.logger.Printf("history: delete: %v", err)
						return m, m.print(m.renderError("Could not delete history entry: " + err.Error()))
					}
				}
				return m, nil
			case 'n', 'N':
				m.picker.CancelMode()
				return m, nil
			}
		}
	}
	return m, nil
}

// dropFromHistory removes the newest in-memory entry equal to text.
func (m *Model) dropFromHistory(text string) {
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i] == text {
			m.history = append(m.history[:i:i], m.history[i+1:]...)
			break
		}
	}
	m.resetHistory()
}

// ---------------------------------------------------------------------------
// Input history
// ---------------------------------------------------------------------------

func (m *Model) browseHistoryBack() {
	if len(m.history) == 0 {
		return
	}
	if m.historyIdx == -1 {
		m.historyDraft = m.editor
		m.historyIdx = len(m.history) - 1
	} else if m.historyIdx > 0 {
		m.historyIdx--
	} else {
		return
	}
	m.editor = m.editor.SetText(m.history[m.historyIdx])
}

func (m *Model) browseHistoryForward() {
	if m.historyIdx == -1 {
		return
	}
	if m.historyIdx < len(m.history)-1 {
		m.historyIdx++
		m.editor = m.editor.SetText(m.history[m.historyIdx])
		return
	}
	// back to the draft, blocks and all
	m.historyIdx = -1
	m.editor = m.historyDraft.Resize(m.inputWidth(), m.inputHeight())
	m.historyDraft = editor.Editor{}
}

func (m *Model) resetHistory() {
	m.historyIdx = -1
	m.historyDraft = editor.Editor{}
}

// trimHistory keeps at most HistoryLimit entries; zero keeps everything.
func (m *Model) trimHistory() {
	if limit := m.Prefs.HistoryLimit; limit > 0 && len(m.history) > limit {
		m.history = m.history[len(m.history)-limit:]
	}
}

// ---------------------------------------------------------------------------
// Message handlers
// ---------------------------------------------------------------------------

func (m Model) handlePaste(msg PasteMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Printf("clipboard: %v", msg.Err)
		return m, m.print(m.renderError("Paste failed: " + msg.Err.Error()))
	}
	if msg.Text == "" {
		return m, nil
	}
	return m.addPasteFragment(msg.Text)
}

func (m Model) handleClipboardWrite(msg ClipboardWriteMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.print(m.renderError("Copy failed: " + msg.Err.Error()))
	}
	if msg.OK {
		return m, m.print(WelcomeStyle.Render("Copied to clipboard."))
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Sizing
// ---------------------------------------------------------------------------

func (m Model) promptWidth() int {
	return textwidth.StringWidth(m.Prefs.Prompt)
}

func (m Model) inputWidth() int {
	return max(1, m.width-m.promptWidth())
}

// inputHeight is the configured height, shrunk to leave room for the footer
// once the terminal size is known.
func (m Model) inputHeight() int {
	h := m.Prefs.InputHeight
	if m.height > 0 {
		h = min(h, max(1, m.height-m.footerRows()))
	}
	return max(1, h)
}

func (m Model) footerRows() int {
	rows := 2
	if m.Prefs.FooterKeybindings {
		rows++
	}
	return rows
}

// print pushes text into the terminal scrollback. On the alternate screen
// there is no scrollback, so the text replaces the notice line instead.
func (m *Model) print(text string) tea.Cmd {
	if m.fullscreen {
		m.notice = stripTrailingBlankLines(text)
		return nil
	}
	return PrintToScrollback(text)
}

// PrintToScrollback returns a tea.Cmd that prints text above the managed
// area.
func PrintToScrollback(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return tea.Println(stripTrailingBlankLines(text) + "\n")
}

// stripTrailingBlankLines removes trailing lines that are empty or
// whitespace-only.
func stripTrailingBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end == 0 {
		return ""
	}
	return strings.Join(lines[:end], "\n")
}

func summarizeForLog(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}

func (m Model) renderError(msg string) string {
	w := m.width
	if w < 20 {
		w = 80
	}
	var styled []string
	for _, l := range WrapWords(msg, w-2) {
		styled = append(styled, ErrorLineStyle.Render(l))
	}
	return strings.Join(styled, "\n")
}
