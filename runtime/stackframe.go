package runtime

import "fmt"

// StackFrame is one entry of a diagnostic call stack: which element
// (rule or token, by name) was being matched, and at what input position
// it was entered. A ParserContext keeps a chain of these to produce the
// "stack trace" of spec §7 / §3 (ParserContext.top_stack_frame).
//
// Adapted from the teacher's DynamicMemoryFrame: a named frame with a
// parent link, originally used to track interpreter scopes. Here it
// tracks rule-invocation nesting instead of variable scopes.
type StackFrame struct {
	ElementName string
	Position    uint64
	Parent      *StackFrame
}

func (f *StackFrame) String() string {
	return fmt.Sprintf("<frame %s@%d>", f.ElementName, f.Position)
}

// IsRoot reports whether f is the bottom of the stack.
func (f *StackFrame) IsRoot() bool { return f.Parent == nil }

// CallStack is a LIFO of StackFrames, one per currently-active rule
// invocation. Adapted from the teacher's MemoryFrameStack.
type CallStack struct {
	top *StackFrame
}

// Top returns the current (innermost) frame, or nil if the stack is empty.
func (cs *CallStack) Top() *StackFrame {
	return cs.top
}

// Push enters a new frame for elementName at position, with the current
// top as its parent. Returns the new frame.
func (cs *CallStack) Push(elementName string, position uint64) *StackFrame {
	f := &StackFrame{ElementName: elementName, Position: position, Parent: cs.top}
	cs.top = f
	tracer().Debugf("entering %s @%d", elementName, position)
	return f
}

// Pop removes and returns the current top frame. Panics if the stack is
// empty, mirroring the teacher's MemoryFrameStack.PopMemoryFrame: popping
// an empty call stack is always a programming error in the engine itself,
// never a consequence of malformed user input.
func (cs *CallStack) Pop() *StackFrame {
	if cs.top == nil {
		panic("scanless/runtime: pop from empty call stack")
	}
	f := cs.top
	tracer().Debugf("leaving %s @%d", f.ElementName, f.Position)
	cs.top = f.Parent
	return f
}

// Frames returns the chain of frames from innermost to outermost, most
// recently entered first. Useful for rendering a stack trace.
func (cs *CallStack) Frames() []*StackFrame {
	var frames []*StackFrame
	for f := cs.top; f != nil; f = f.Parent {
		frames = append(frames, f)
	}
	return frames
}

// WalkTrace is a bounded ring buffer of trace lines, recording the most
// recent matching steps for inclusion in an error's "walk trace"
// (spec §7, §9). Unlike CallStack (which only tracks currently active
// invocations), WalkTrace remembers steps that have already completed,
// up to Limit entries.
type WalkTrace struct {
	Limit   int
	entries []string
}

// NewWalkTrace creates a walk trace retaining at most limit entries.
func NewWalkTrace(limit int) *WalkTrace {
	return &WalkTrace{Limit: limit}
}

// Record appends a formatted trace line, evicting the oldest entry once
// Limit is exceeded.
func (w *WalkTrace) Record(format string, args ...interface{}) {
	if w.Limit <= 0 {
		return
	}
	line := fmt.Sprintf(format, args...)
	w.entries = append(w.entries, line)
	if len(w.entries) > w.Limit {
		w.entries = w.entries[len(w.entries)-w.Limit:]
	}
}

// Entries returns the retained trace lines, oldest first.
func (w *WalkTrace) Entries() []string {
	return w.entries
}
