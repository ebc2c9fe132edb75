package domain

// Capabilities is the role-scoped permission set resolved once per request.
// Engines receive it instead of branching on role strings.
type Capabilities struct {
	UserID          string
	CanAttempt      bool
	CanGrade        bool
	CanViewRankings bool
	CanAuthor       bool
	CanRunLiveClass bool

	allStudents bool
	linked      map[string]struct{}
}

// CapabilitiesFor derives the capability set of a profile.
func CapabilitiesFor(p Profile) Capabilities {
	caps := Capabilities{UserID: p.ID, CanViewRankings: true}
	switch p.Role {
	case RoleStudent:
		caps.CanAttempt = true
	case RoleTeacher:
		caps.CanGrade = true
		caps.CanAuthor = true
		caps.CanRunLiveClass = true
		caps.allStudents = true
	case RoleAdmin:
		caps.CanGrade = true
		caps.CanAuthor = true
		caps.CanRunLiveClass = true
		caps.allStudents = true
	case RoleParent, RoleMentor:
		caps.linked = make(map[string]struct{}, len(p.LinkedStudentIDs))
		for _, id := range p.LinkedStudentIDs {
			caps.linked[id] = struct{}{}
		}
	default:
		caps.CanViewRankings = false
	}
	return caps
}

// CanViewStudent reports whether the caller may read data about studentID.
func (c Capabilities) CanViewStudent(studentID string) bool {
	if c.allStudents || c.UserID == studentID {
		return true
	}
	_, ok := c.linked[studentID]
	return ok
}
