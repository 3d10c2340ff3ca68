package build

// Version is the daemon version, overridable at link time.
var Version = "0.3.0"
