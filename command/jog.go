package command

// Jogger turns relative jog commands into absolute power, clamped to
// [-limit, limit].
type Jogger struct {
	power int
	limit int
}

// NewJogger returns a Jogger starting at zero power.
func NewJogger(limit int) *Jogger {
	return &Jogger{limit: limit}
}

// Resolve returns the absolute power c asks for. It does not change the
// Jogger; call Set once the power was applied.
func (j *Jogger) Resolve(c Command) int {
	switch c.Kind {
	case Stop:
		return 0
	case Jog:
		p := j.power + c.Delta
		if p > j.limit {
			p = j.limit
		}
		if p < -j.limit {
			p = -j.limit
		}
		return p
	default:
		return c.Power
	}
}

// Set records the power currently applied.
func (j *Jogger) Set(power int) {
	j.power = power
}

// Power returns the power currently applied.
func (j *Jogger) Power() int {
	return j.power
}
