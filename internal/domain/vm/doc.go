/*
Package vm implements the console's view-state controller.

The controller holds one explicit State: selected OS, power state, browser
URL, session, stats and display. Every operation builds the next State,
installs it, and then applies side effects in one place: the stats timer,
metrics, logging and event publication. Which controls are enabled is a
pure function of the power state (DeriveControls).

	inactive --PowerOn--> active <--Pause/Resume--> paused
	active|paused --PowerOff--> inactive
	active|paused --Restart--> same state, new session

Sessions come from a Backend. LocalBackend issues vm_<ULID> tokens; the
remote backend (internal/providers/sessionapi) needs a bearer token, which
the controller discovers by interface assertion.

While active, stats are sampled every interval (cpu 10-39, ram 20-59,
network 50-149) and averaged over a short window; in any other state they
are zero.
*/
package vm
