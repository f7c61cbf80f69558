package app

import "github.com/tmakov/Huddle/internal/domain"

// MeetingDirectory answers whether a meeting code refers to a meeting a
// client may join. Scheduling and persistence live outside this process;
// the default directory only enforces the issued code shape.
type MeetingDirectory interface {
	Valid(code domain.MeetingCode) bool
}

type CodeShapeDirectory struct{}

func NewCodeShapeDirectory() CodeShapeDirectory { return CodeShapeDirectory{} }

func (CodeShapeDirectory) Valid(code domain.MeetingCode) bool {
	return code.Wellformed()
}
