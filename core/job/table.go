// Package job tracks background processes from launch until the shell
// observes them exit.
package job

// Handle is an opaque reference to a tracked job slot.
type Handle int

// None is the zero result of lookups on an empty or missed table.
const None Handle = -1

// Entry records one tracked process: its ID and the ID of the process
// group controlling it.
type Entry struct {
	PID  int
	PGID int
}

type slot struct {
	entry Entry
	seq   uint64
	live  bool
}

// Table is a registry of background process IDs. Records live in a growable
// arena; removal tombstones the slot and recycles it through a free list.
// The shell has no internal threads, so the table is not locked.
type Table struct {
	slots  []slot
	free   []int
	seq    uint64
	count  int
	newest Handle
}

// NewTable returns an empty job table.
func NewTable() *Table {
	return &Table{newest: None}
}

// Len returns the number of tracked entries.
func (t *Table) Len() int {
	return t.count
}

// Add tracks a process, making it the most recent entry.
func (t *Table) Add(pid, pgid int) Handle {
	t.seq++
	s := slot{entry: Entry{PID: pid, PGID: pgid}, seq: t.seq, live: true}

	var idx int
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[idx] = s
	} else {
		idx = len(t.slots)
		t.slots = append(t.slots, s)
	}
	t.count++
	t.newest = Handle(idx)
	return Handle(idx)
}

// Get returns the entry behind a handle, if it is still tracked.
func (t *Table) Get(h Handle) (Entry, bool) {
	if h < 0 || int(h) >= len(t.slots) || !t.slots[h].live {
		return Entry{}, false
	}
	return t.slots[h].entry, true
}

// Remove stops tracking the entry behind the handle.
func (t *Table) Remove(h Handle) {
	if _, ok := t.Get(h); !ok {
		return
	}
	t.slots[h].live = false
	t.free = append(t.free, int(h))
	t.count--
	if h == t.newest {
		t.newest = t.scanNewest()
	}
}

// RemovePID stops tracking the process with the given ID. It reports
// whether the process was tracked.
func (t *Table) RemovePID(pid int) bool {
	h := t.Find(pid)
	if h == None {
		return false
	}
	t.Remove(h)
	return true
}

// Find scans for the entry tracking the given process ID.
func (t *Table) Find(pid int) Handle {
	for i := range t.slots {
		if t.slots[i].live && t.slots[i].entry.PID == pid {
			return Handle(i)
		}
	}
	return None
}

// Latest returns the most recently added, still-tracked entry.
func (t *Table) Latest() Handle {
	return t.newest
}

// NextOlder returns the tracked entry added most recently before h,
// or None when h is the oldest. It enables full newest-to-oldest traversal.
func (t *Table) NextOlder(h Handle) Handle {
	if h < 0 || int(h) >= len(t.slots) {
		return None
	}
	limit := t.slots[h].seq
	best := None
	var bestSeq uint64
	for i := range t.slots {
		s := &t.slots[i]
		if s.live && s.seq < limit && s.seq > bestSeq {
			best = Handle(i)
			bestSeq = s.seq
		}
	}
	return best
}

// Group returns every tracked entry controlled by the given process group,
// newest first.
func (t *Table) Group(pgid int) []Entry {
	var out []Entry
	for h := t.Latest(); h != None; h = t.NextOlder(h) {
		if e, ok := t.Get(h); ok && e.PGID == pgid {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops every entry. Used by the exit builtin during teardown.
func (t *Table) Clear() {
	t.slots = nil
	t.free = nil
	t.count = 0
	t.newest = None
}

func (t *Table) scanNewest() Handle {
	best := None
	var bestSeq uint64
	for i := range t.slots {
		if t.slots[i].live && t.slots[i].seq > bestSeq {
			best = Handle(i)
			bestSeq = t.slots[i].seq
		}
	}
	return best
}
