package linuxprocess

import (
	"cmp"
	"slices"

	"github.com/shirou/gopsutil/v3/process"
)

type ProcListItem struct {
	PID  int
	PPID int
	P    *process.Process
}

// List returns all running processes sorted by pid
func List() []ProcListItem {
	ps, err := process.Processes()
	if err != nil {
		return nil
	}

	procs := make([]ProcListItem, 0, len(ps))
	for _, p := range ps {
		ppid, err := p.Ppid()
		if err != nil {
			// process is gone already
			continue
		}

		procs = append(procs, ProcListItem{
			PID:  int(p.Pid),
			PPID: int(ppid),
			P:    p,
		})
	}
	slices.SortFunc(procs, func(a, b ProcListItem) int {
		return cmp.Compare(a.PID, b.PID)
	})
	return procs
}

// Children returns whole children subtree of pid as list, pid itself excluded.
func Children(list []ProcListItem, pid int) []ProcListItem {
	byParent := map[int][]ProcListItem{}
	for _, p := range list {
		byParent[p.PPID] = append(byParent[p.PPID], p)
	}

	res := []ProcListItem{}
	queue := []int{pid}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range byParent[parent] {
			if child.PID == pid {
				continue
			}
			res = append(res, child)
			queue = append(queue, child.PID)
		}
	}
	return res
}

// Alive reports whether process with given pid exists and is not a zombie.
func Alive(pid int) bool {
	exists, err := process.PidExists(int32(pid)) //nolint:gosec // pids fit int32
	if err != nil || !exists {
		return false
	}

	p, err := process.NewProcess(int32(pid)) //nolint:gosec // pids fit int32
	if err != nil {
		return false
	}

	statuses, err := p.Status()
	if err != nil {
		// cannot tell, assume it is there
		return true
	}

	return !slices.Contains(statuses, process.Zombie)
}
