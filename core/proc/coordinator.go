package proc

import (
	"log"

	"golang.org/x/sys/unix"

	"gosh/core/job"
)

// Coordinator turns freshly launched subprocesses into one OS process
// group, arbitrates terminal-foreground ownership, and tracks background
// members in the job table.
//
// The ordering it enforces is the whole correctness story: every member is
// parked in its self-stop until grouping completes (no member can race into
// terminal contention), the group owns the terminal before any member is
// resumed, and the shell reclaims the terminal only after every foreground
// member has settled.
type Coordinator struct {
	Session *Session
	Jobs    *job.Table
}

// Run executes the grouping protocol for one launched pipeline and returns
// the pipeline's exit status. Foreground pipelines block until every member
// has stopped or exited; background pipelines register every member in the
// job table and return immediately.
func (c *Coordinator) Run(procs []Subprocess, background bool) (int, error) {
	if len(procs) == 0 {
		return 0, nil
	}

	// Members that died before stopping were already reaped; they must not
	// enter the group or the job table.
	live := c.waitForStops(procs)
	if len(live) == 0 {
		return 0, nil
	}
	pgid := c.group(live)

	if !background {
		if err := c.Session.GiveForeground(pgid); err != nil {
			// Not fatal: the job still runs, it just shares the terminal.
			log.Print(err)
		}
	}

	// Grouping is complete, so the members may resume past their self-stop
	// and proceed into their target programs.
	c.resume(pgid, live)

	if background {
		for _, p := range live {
			c.Jobs.Add(p.PID, pgid)
		}
		return 0, nil
	}

	status := c.waitForeground(live, pgid)
	if err := c.Session.ReclaimForeground(); err != nil {
		log.Print(err)
	}
	return status, nil
}

// Settle cleans up a partially launched pipeline after a spawn failure:
// the surviving members are grouped, resumed, and waited to exit so none
// of them is abandoned as a zombie. Their pipe ends are already closed, so
// they terminate on EOF or SIGPIPE.
func (c *Coordinator) Settle(procs []Subprocess) {
	if len(procs) == 0 {
		return
	}
	live := c.waitForStops(procs)
	if len(live) == 0 {
		return
	}
	pgid := c.group(live)
	c.resume(pgid, live)

	for _, p := range live {
		for {
			var ws unix.WaitStatus
			if _, err := unix.Wait4(p.PID, &ws, unix.WUNTRACED, nil); err != nil {
				log.Print(&WaitError{PID: p.PID, Err: err})
				break
			}
			if ws.Exited() || ws.Signaled() {
				break
			}
			// A member stopped instead of exiting (e.g. SIGTTIN while
			// reading the terminal from the background). Terminate it: a
			// broken pipeline must not linger.
			_ = unix.Kill(-pgid, unix.SIGTERM)
			_ = unix.Kill(-pgid, unix.SIGCONT)
		}
	}
}

// ForegroundJob promotes a job's group to the terminal foreground, resumes
// it, and blocks until every tracked member of the group has stopped or
// exited, then reclaims the terminal. Exited members leave the job table.
func (c *Coordinator) ForegroundJob(h job.Handle) (int, error) {
	entry, ok := c.Jobs.Get(h)
	if !ok {
		return 0, nil
	}
	if err := c.Session.GiveForeground(entry.PGID); err != nil {
		return 1, err
	}
	if err := unix.Kill(-entry.PGID, unix.SIGCONT); err != nil {
		_ = c.Session.ReclaimForeground()
		return 1, &WaitError{PID: entry.PID, Err: err}
	}

	status := 0
	for _, e := range c.Jobs.Group(entry.PGID) {
		var ws unix.WaitStatus
		if _, err := unix.Wait4(e.PID, &ws, unix.WUNTRACED, nil); err != nil {
			log.Print(&WaitError{PID: e.PID, Err: err})
			c.Jobs.RemovePID(e.PID)
			continue
		}
		switch {
		case ws.Exited():
			status = ws.ExitStatus()
			c.Jobs.RemovePID(e.PID)
		case ws.Signaled():
			status = 128 + int(ws.Signal())
			c.Jobs.RemovePID(e.PID)
		}
		// Stopped members stay tracked for a later fg/bg.
	}

	if err := c.Session.ReclaimForeground(); err != nil {
		log.Print(err)
	}
	return status, nil
}

// ResumeJob resumes a stopped job's group in the background. The terminal
// stays with the shell and the job table is untouched: entries leave the
// table only on an observed exit.
func (c *Coordinator) ResumeJob(h job.Handle) error {
	entry, ok := c.Jobs.Get(h)
	if !ok {
		return nil
	}
	if err := unix.Kill(-entry.PGID, unix.SIGCONT); err != nil {
		return &WaitError{PID: entry.PID, Err: err}
	}
	return nil
}

// WaitAll blocks until every tracked job has exited and the table is
// empty. Stops are deliberately not observed here: only a real exit
// releases an entry.
func (c *Coordinator) WaitAll() {
	for h := c.Jobs.Latest(); h != job.None; {
		entry, ok := c.Jobs.Get(h)
		if !ok {
			h = c.Jobs.Latest()
			continue
		}
		var ws unix.WaitStatus
		if _, err := unix.Wait4(entry.PID, &ws, 0, nil); err != nil {
			log.Print(&WaitError{PID: entry.PID, Err: err})
		}
		next := c.Jobs.NextOlder(h)
		c.Jobs.Remove(h)
		h = next
	}
}

// ReapFinished performs the non-blocking pull-based scan: every job
// observed to have exited is dropped from the table and returned for
// reporting. Running and stopped jobs stay put.
func (c *Coordinator) ReapFinished() []job.Entry {
	var done []job.Entry
	h := c.Jobs.Latest()
	for h != job.None {
		next := c.Jobs.NextOlder(h)
		entry, ok := c.Jobs.Get(h)
		if ok {
			var ws unix.WaitStatus
			wpid, err := unix.Wait4(entry.PID, &ws, unix.WNOHANG, nil)
			switch {
			case err == unix.ECHILD:
				// Already reaped elsewhere; drop the stale entry.
				c.Jobs.Remove(h)
			case err != nil:
				log.Print(&WaitError{PID: entry.PID, Err: err})
			case wpid == entry.PID && (ws.Exited() || ws.Signaled()):
				c.Jobs.Remove(h)
				done = append(done, entry)
			}
		}
		h = next
	}
	return done
}

// waitForStops blocks until every member has signaled its self-stop,
// guaranteeing none races ahead into group or terminal contention. Members
// that managed to die first are filtered out of the returned slice.
func (c *Coordinator) waitForStops(procs []Subprocess) []Subprocess {
	live := make([]Subprocess, 0, len(procs))
	for _, p := range procs {
		for {
			var ws unix.WaitStatus
			if _, err := unix.Wait4(p.PID, &ws, unix.WUNTRACED, nil); err != nil {
				log.Print(&WaitError{PID: p.PID, Err: err})
				break
			}
			if ws.Stopped() {
				live = append(live, p)
				break
			}
			if ws.Exited() || ws.Signaled() {
				break
			}
		}
	}
	return live
}

// resume releases a parked group past its self-stop. When the group signal
// is refused (a restricted environment may have denied every setpgid, so
// the group never formed) each member is continued individually; a member
// left in its self-stop would wedge the waits that follow.
func (c *Coordinator) resume(pgid int, procs []Subprocess) {
	if err := unix.Kill(-pgid, unix.SIGCONT); err == nil {
		return
	}
	for _, p := range procs {
		if err := unix.Kill(p.PID, unix.SIGCONT); err != nil {
			log.Printf("failed to resume process %d: %v", p.PID, err)
		}
	}
}

// group assigns every member to one process group identified by the first
// member's ID. A single failed assignment is reported but does not stop
// the remaining assignments.
func (c *Coordinator) group(procs []Subprocess) int {
	pgid := procs[0].PID
	for _, p := range procs {
		if err := unix.Setpgid(p.PID, pgid); err != nil {
			log.Print(&GroupingError{PID: p.PID, Err: err})
		}
	}
	return pgid
}

// waitForeground blocks on each member until it stops or exits. Exited
// members are dropped from tracking; stopped members are added to the job
// table so fg/bg can find them. The pipeline's status is the last member's.
func (c *Coordinator) waitForeground(procs []Subprocess, pgid int) int {
	status := 0
	for _, p := range procs {
		var ws unix.WaitStatus
		if _, err := unix.Wait4(p.PID, &ws, unix.WUNTRACED, nil); err != nil {
			log.Print(&WaitError{PID: p.PID, Err: err})
			continue
		}
		switch {
		case ws.Exited():
			status = ws.ExitStatus()
		case ws.Signaled():
			status = 128 + int(ws.Signal())
		case ws.Stopped():
			c.Jobs.Add(p.PID, pgid)
			status = 128 + int(unix.SIGTSTP)
		}
	}
	return status
}
