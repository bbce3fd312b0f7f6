package parser

import (
	"fmt"
	"strings"
)

// TeamSide identifies which team performed an action.
type TeamSide int

const (
	TeamHome TeamSide = iota
	TeamVisiting
)

type Skill int

const (
	SkillServe Skill = iota
	SkillReception
	SkillAttack
	SkillBlock
	SkillDig
	SkillSet
	SkillFreeBall
)

// Tempo is the action type: the speed or style of the ball played.
type Tempo int

const (
	TempoHigh Tempo = iota
	TempoMedium
	TempoQuick
	TempoTense
	TempoSuper
	TempoFast
	TempoOther
)

// Evaluation is the symbolic grade of an action. Its meaning depends on the skill.
type Evaluation int

const (
	EvalEqual Evaluation = iota
	EvalSlash
	EvalMinus
	EvalExclamation
	EvalPlus
	EvalHash
)

// primaryCodeLen is the length of the main code. Anything after it belongs to
// the advanced and extended codes, which are not decoded.
const primaryCodeLen = 6

// DecodeCode decodes the primary part of an action code such as "*14SQ=".
func DecodeCode(code string) (CodeExplanation, error) {
	var ce CodeExplanation

	chars := []rune(strings.TrimSpace(code))
	if len(chars) < primaryCodeLen {
		return ce, fmt.Errorf("%w %q: need %d characters, got %d", ErrInvalidCode, code, primaryCodeLen, len(chars))
	}

	var ok bool
	if ce.Team, ok = teamSideOf(chars[0]); !ok {
		return ce, invalidChar(code, 0, chars[0], "team side")
	}

	tens, units := chars[1], chars[2]
	if !isDigit(tens) {
		return ce, invalidChar(code, 1, tens, "player number")
	}
	if !isDigit(units) {
		return ce, invalidChar(code, 2, units, "player number")
	}
	ce.PlayerNumber = int(tens-'0')*10 + int(units-'0')

	if ce.Skill, ok = skillOf(chars[3]); !ok {
		return ce, invalidChar(code, 3, chars[3], "skill")
	}
	if ce.Tempo, ok = tempoOf(chars[4]); !ok {
		return ce, invalidChar(code, 4, chars[4], "tempo")
	}
	if ce.Evaluation, ok = evaluationOf(chars[5]); !ok {
		return ce, invalidChar(code, 5, chars[5], "evaluation")
	}

	return ce, nil
}

func invalidChar(code string, pos int, r rune, what string) error {
	return fmt.Errorf("%w %q: %q at position %d is not a %s", ErrInvalidCode, code, r, pos, what)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func teamSideOf(r rune) (TeamSide, bool) {
	switch r {
	case '*':
		return TeamHome, true
	case 'a':
		return TeamVisiting, true
	}
	return 0, false
}

func skillOf(r rune) (Skill, bool) {
	switch r {
	case 'S':
		return SkillServe, true
	case 'R':
		return SkillReception, true
	case 'A':
		return SkillAttack, true
	case 'B':
		return SkillBlock, true
	case 'D':
		return SkillDig, true
	case 'E':
		return SkillSet, true
	case 'F':
		return SkillFreeBall, true
	}
	return 0, false
}

func tempoOf(r rune) (Tempo, bool) {
	switch r {
	case 'H':
		return TempoHigh, true
	case 'M':
		return TempoMedium, true
	case 'Q':
		return TempoQuick, true
	case 'T':
		return TempoTense, true
	case 'S':
		return TempoSuper, true
	case 'N':
		return TempoFast, true
	case 'O':
		return TempoOther, true
	}
	return 0, false
}

func evaluationOf(r rune) (Evaluation, bool) {
	switch r {
	case '=':
		return EvalEqual, true
	case '/':
		return EvalSlash, true
	case '-':
		return EvalMinus, true
	case '!':
		return EvalExclamation, true
	case '+':
		return EvalPlus, true
	case '#':
		return EvalHash, true
	}
	return 0, false
}

func (t TeamSide) String() string {
	switch t {
	case TeamHome:
		return "Home"
	case TeamVisiting:
		return "Visiting"
	}
	return fmt.Sprintf("TeamSide(%d)", int(t))
}

func (s Skill) String() string {
	switch s {
	case SkillServe:
		return "Serve"
	case SkillReception:
		return "Reception"
	case SkillAttack:
		return "Attack"
	case SkillBlock:
		return "Block"
	case SkillDig:
		return "Dig"
	case SkillSet:
		return "Set"
	case SkillFreeBall:
		return "FreeBall"
	}
	return fmt.Sprintf("Skill(%d)", int(s))
}

func (t Tempo) String() string {
	switch t {
	case TempoHigh:
		return "High"
	case TempoMedium:
		return "Medium"
	case TempoQuick:
		return "Quick"
	case TempoTense:
		return "Tense"
	case TempoSuper:
		return "Super"
	case TempoFast:
		return "Fast"
	case TempoOther:
		return "Other"
	}
	return fmt.Sprintf("Tempo(%d)", int(t))
}

func (e Evaluation) String() string {
	switch e {
	case EvalEqual:
		return "Equal"
	case EvalSlash:
		return "Slash"
	case EvalMinus:
		return "Minus"
	case EvalExclamation:
		return "Exclamation"
	case EvalPlus:
		return "Plus"
	case EvalHash:
		return "Hash"
	}
	return fmt.Sprintf("Evaluation(%d)", int(e))
}

// Symbol returns the character the evaluation is written as in a scout file.
func (e Evaluation) Symbol() string {
	switch e {
	case EvalEqual:
		return "="
	case EvalSlash:
		return "/"
	case EvalMinus:
		return "-"
	case EvalExclamation:
		return "!"
	case EvalPlus:
		return "+"
	case EvalHash:
		return "#"
	}
	return "?"
}

func (t TeamSide) MarshalText() ([]byte, error)   { return []byte(t.String()), nil }
func (s Skill) MarshalText() ([]byte, error)      { return []byte(s.String()), nil }
func (t Tempo) MarshalText() ([]byte, error)      { return []byte(t.String()), nil }
func (e Evaluation) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
