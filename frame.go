package taskpool

import "github.com/ygrebnov/taskpool/internal/frame"

// Frame is the wire type exchanged with a worker, re-exported here as an
// alias of the internal frame type. transport.Port and scan.Transferable
// remain in internal packages, so a custom Port can only be implemented by
// code inside this module.
type Frame = frame.Frame

// FrameError is the wire shape of a worker-reported failure.
type FrameError = frame.Error
