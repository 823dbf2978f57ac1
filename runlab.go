// Package runlab launches reinforcement-learning training runs and keeps a
// lightweight on-disk record of each launch.
//
// Every launch gets its own timestamped directory under the runs root, a `pid`
// file with the spawned trainer's process id, and a `run.yaml` manifest. The
// directory is created once and never touched again; inspecting or stopping a
// run is an external concern (e.g. `kill $(cat runs/<dir>/pid)`).
package runlab

// Version is the current runlab release.
var Version = "0.2.0"
