package core

// ops_format3.go evaluates Format III jump conditions, per spec.md §4.E:
// 0=JEQ(Z=1), 1=JNE(Z=0), 2=JC(C=1), 3=JNC(C=0), 4=JN(N=1), 5=JGE(N^V=0),
// 6=JL(N^V=1), 7=JMP (unconditional).

// EvaluateCondition reports whether a Format III jump's condition holds
// against the current status flags.
func EvaluateCondition(cond Condition, sr StatusRegister) bool {
	switch cond {
	case CondEQ:
		return sr.Zero()
	case CondNE:
		return !sr.Zero()
	case CondC:
		return sr.Carry()
	case CondNC:
		return !sr.Carry()
	case CondN:
		return sr.Negative()
	case CondGE:
		return sr.Negative() == sr.Overflow()
	case CondL:
		return sr.Negative() != sr.Overflow()
	case CondJMP:
		return true
	default:
		return false
	}
}
