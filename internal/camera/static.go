package camera

import "context"

// Static is a Camera that always returns the same frame. It exists for
// development and tests; probe and grab failures can be injected to exercise
// the denial and device-error paths.
type Static struct {
	frame    []byte
	probeErr error
	grabErr  error
}

// NewStatic creates a camera that serves the given encoded frame.
func NewStatic(frame []byte) *Static {
	return &Static{frame: frame}
}

// NewStaticDenied creates a camera whose probe fails with the given error.
func NewStaticDenied(err error) *Static {
	return &Static{probeErr: err}
}

// FailGrab makes subsequent Grab calls return err. Passing nil restores
// normal behavior.
func (s *Static) FailGrab(err error) {
	s.grabErr = err
}

func (s *Static) Probe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.probeErr
}

func (s *Static) Grab(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.grabErr != nil {
		return nil, s.grabErr
	}
	if len(s.frame) == 0 {
		return nil, ErrEmptyFrame
	}
	frame := make([]byte, len(s.frame))
	copy(frame, s.frame)
	return frame, nil
}
