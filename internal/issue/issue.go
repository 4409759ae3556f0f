// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	InvalidSignalId Id = iota + 1
	BadDescriptorId
	NotSignalContextId
	WaitInProgressId
	ConfigLoadFailedId
	ExecFailedId
	ChildFailedId
	PermissionDeniedId
	PlatformNotSupportedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // procutil docs about this issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown. stylePath is a glamour
// style name ("dark", "light", "auto", ...) or a path to a style file.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	invalidSignalIssue = &Issue{
		id: InvalidSignalId,
		mdMsg: `
# Invalid signal

The signal you named is not known on this platform, or the number is out of range.

## Signals can be given as:
- a name without prefix: ` + "`TERM`" + `, ` + "`USR1`" + `
- a name with prefix: ` + "`SIGTERM`" + `
- a number: ` + "`15`" + `

Names are case-sensitive. List the names this platform knows with:
~~~
$ procutil signals
~~~`,
		extLinks: []HttpLink{"https://man7.org/linux/man-pages/man7/signal.7.html"},
	}

	badDescriptorIssue = &Issue{
		id: BadDescriptorId,
		mdMsg: `
# Bad file descriptor

The descriptor is not open in this process. Descriptors are per process:
a number you saw in another process means nothing here.

## Things you can try:
- List the descriptors that are open right now:
~~~
$ procutil fds --long
~~~`,
		extLinks: []HttpLink{"https://man7.org/linux/man-pages/man2/fcntl.2.html"},
	}

	notSignalContextIssue = &Issue{
		id: NotSignalContextId,
		mdMsg: `
# Not in the signal context

Waiting for signals is only allowed from the process main thread, where
the signal mask can be changed without affecting other threads.

This usually means procutil was embedded in another program that calls
the waiter from a worker goroutine. Call it from main instead.`,
	}

	waitInProgressIssue = &Issue{
		id: WaitInProgressId,
		mdMsg: `
# A signal wait is already running

Only one wait may run at a time. Wait for the first one to return, or
cancel it, before starting another.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

procutil could not read or validate its configuration file.

## Things you can try:
- Show where procutil looks for its configuration:
~~~
$ procutil config path
~~~

- Write a fresh default file and compare:
~~~
$ procutil config dump
~~~

## Example configuration:
~~~cue
log: level: "info"
wait: poll_interval: "100ms"
run: forward_signals: ["TERM", "INT", "HUP"]
~~~`,
	}

	execFailedIssue = &Issue{
		id: ExecFailedId,
		mdMsg: `
# Failed to execute program

The program could not be started. Descriptors already marked close-on-exec
stay marked.

## Things you can try:
- Check that the program exists and is on your PATH
- Check that it is executable:
~~~
$ ls -l "$(command -v <program>)"
~~~`,
	}

	childFailedIssue = &Issue{
		id: ChildFailedId,
		mdMsg: `
# Child process failed

The program exited with a non-zero status or was killed by a signal.
procutil exits with the same status. A child killed by signal N makes
procutil exit with 128+N.`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied

The operating system refused the operation.

## Things you can try:
- Check file permissions on the program or config file
- Signals can only be sent to processes you own`,
	}

	platformNotSupportedIssue = &Issue{
		id: PlatformNotSupportedId,
		mdMsg: `
# Not supported on this platform

Synchronous signal waits need rt_sigtimedwait, which procutil only uses on
Linux. Descriptor operations work on every Unix.`,
	}

	issues = map[Id]*Issue{
		invalidSignalIssue.Id():        invalidSignalIssue,
		badDescriptorIssue.Id():        badDescriptorIssue,
		notSignalContextIssue.Id():     notSignalContextIssue,
		waitInProgressIssue.Id():       waitInProgressIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		execFailedIssue.Id():           execFailedIssue,
		childFailedIssue.Id():          childFailedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
		platformNotSupportedIssue.Id(): platformNotSupportedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
