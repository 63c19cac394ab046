package models

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a copy of u that shares no memory with it.
func (u User) Clone() User {
	u.LastLoginAt = clonePtr(u.LastLoginAt)
	return u
}

// Clone returns a copy of c that shares no memory with it.
func (c Class) Clone() Class {
	c.Lifecycle.DeletedAt = clonePtr(c.Lifecycle.DeletedAt)
	return c
}

// Clone returns a copy of w that shares no memory with it.
func (w WeeklySession) Clone() WeeklySession {
	w.StartedAt = clonePtr(w.StartedAt)
	w.EndedAt = clonePtr(w.EndedAt)
	w.AutoEndAt = clonePtr(w.AutoEndAt)
	return w
}

// Clone returns a copy of e that shares no memory with it.
func (e Enrollment) Clone() Enrollment {
	e.WithdrawnAt = clonePtr(e.WithdrawnAt)
	return e
}

// Clone returns a copy of s that shares no memory with it.
func (s Submission) Clone() Submission {
	s.Score = clonePtr(s.Score)
	return s
}

// Clone returns a copy of l that shares no memory with it.
func (l AdminLog) Clone() AdminLog {
	l.TargetID = clonePtr(l.TargetID)
	return l
}
