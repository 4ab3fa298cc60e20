package models

import "fmt"

type TaskStatus string

const (
	TaskWaiting   TaskStatus = "waiting"
	TaskActing    TaskStatus = "acting"
	TaskComplete  TaskStatus = "complete"
	TaskCancelled TaskStatus = "cancelled"
)

type DoctorState string

const (
	DoctorActing  DoctorState = "acting"
	DoctorWaiting DoctorState = "waiting"
	DoctorOffice  DoctorState = "office"
	DoctorAway    DoctorState = "away"
)

var terminalTaskStatuses = map[TaskStatus]bool{
	TaskComplete:  true,
	TaskCancelled: true,
}

// Task lifecycle: waiting -> acting -> complete, cancel allowed until terminal
var validTaskTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskWaiting: {
		TaskActing:    true,
		TaskCancelled: true,
	},
	TaskActing: {
		TaskComplete:  true,
		TaskCancelled: true,
	},
}

var validDoctorStates = map[DoctorState]bool{
	DoctorActing:  true,
	DoctorWaiting: true,
	DoctorOffice:  true,
	DoctorAway:    true,
}

func IsTerminal(s TaskStatus) bool {
	return terminalTaskStatuses[s]
}

func ValidateTaskTransition(from, to TaskStatus) error {
	if IsTerminal(from) {
		return fmt.Errorf("cannot transition from terminal status %q", from)
	}
	allowed, ok := validTaskTransitions[from]
	if !ok {
		return fmt.Errorf("unknown status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid task transition: %q -> %q", from, to)
	}
	return nil
}

func IsValidDoctorState(s DoctorState) bool {
	return validDoctorStates[s]
}
