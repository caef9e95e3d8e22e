package dialog

import "fmt"

// Skill names a specialized conversational mode. The set is closed: routing
// and stack updates reject anything outside it.
type Skill string

const (
	SkillAssistant     Skill = "assistant"
	SkillBuildPC       Skill = "build_pc"
	SkillValidatePrice Skill = "validate_price"
)

// Skills lists every recognized skill.
var Skills = []Skill{SkillAssistant, SkillBuildPC, SkillValidatePrice}

// ValidSkill reports whether s belongs to the closed skill set.
func ValidSkill(s Skill) bool {
	switch s {
	case SkillAssistant, SkillBuildPC, SkillValidatePrice:
		return true
	}
	return false
}

// StackOp is a requested mutation of the dialog stack. The zero value leaves
// the stack untouched.
type StackOp string

const (
	// StackNop leaves the stack unchanged.
	StackNop StackOp = ""
	// StackPop removes the innermost skill. Popping an empty stack is a no-op.
	StackPop StackOp = "pop"
)

// Push returns the op that appends a skill to the stack.
func Push(s Skill) StackOp { return StackOp(s) }

// UpdateStack applies op to stack and returns the resulting stack. It is the
// single authoritative transition rule for the dialog stack; nodes that change
// the active skill must go through it instead of mutating the slice directly.
//
//   - StackNop returns the stack unchanged.
//   - StackPop removes the last element; on an empty stack it is a no-op.
//   - A skill from the closed set is appended.
//   - Anything else fails with ErrInvalidTransition and the caller must not
//     apply any mutation.
//
// The returned slice never aliases unused capacity of the input, so callers
// may retain both the old and the new stack safely.
func UpdateStack(stack []Skill, op StackOp) ([]Skill, error) {
	switch {
	case op == StackNop:
		return stack, nil
	case op == StackPop:
		if len(stack) == 0 {
			return stack, nil
		}
		return stack[:len(stack)-1:len(stack)-1], nil
	case ValidSkill(Skill(op)):
		out := make([]Skill, len(stack), len(stack)+1)
		copy(out, stack)
		return append(out, Skill(op)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransition, string(op))
	}
}
