package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/younwookim/stepper/internal/application/system"
	"github.com/younwookim/stepper/internal/domain/motion"
)

const compressedExt = ".zst"

// Replayer feeds recorded frames back into a scheduler
type Replayer struct {
	data   ReplayData
	frame  int
	lastDT float64
}

// NewReplayer creates a new replayer from replay data
func NewReplayer(data ReplayData) *Replayer {
	return &Replayer{
		data:  data,
		frame: 0,
	}
}

// LoadReplay loads replay data from a file
func LoadReplay(filename string) (*ReplayData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if strings.HasSuffix(filename, compressedExt) {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	return Decode(r)
}

// WriteReplay writes data to filename
func WriteReplay(filename string, data ReplayData) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if !strings.HasSuffix(filename, compressedExt) {
		return Encode(file, data)
	}

	enc, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}
	if err := Encode(enc, data); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush encoder: %w", err)
	}
	return nil
}

// Encode writes data as indented JSON
func Encode(w io.Writer, data ReplayData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return nil
}

// Decode reads JSON replay data
func Decode(r io.Reader) (*ReplayData, error) {
	var data ReplayData
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if data.Version != Version {
		return nil, fmt.Errorf("unsupported replay version %q", data.Version)
	}
	return &data, nil
}

// Prepare puts obj into the recorded start pose
func (r *Replayer) Prepare(obj motion.Object) {
	obj.SetPosition(r.data.Start.Pos.Vec())
	obj.SetRotationY(r.data.Start.Yaw)
}

// Step feeds the next frame's calls to s, then ticks it. It returns false
// once every frame has been played.
func (r *Replayer) Step(s *system.Scheduler) bool {
	if r.frame >= len(r.data.Frames) {
		return false
	}

	fi := r.data.Frames[r.frame]
	r.frame++
	r.lastDT = fi.DT

	sink := Direct(s)
	for _, ev := range fi.Events {
		Apply(sink, ev)
	}
	s.Tick(fi.DT)
	return true
}

// Run plays every remaining frame and returns how many were played
func (r *Replayer) Run(s *system.Scheduler) int {
	n := 0
	for r.Step(s) {
		n++
	}
	return n
}

// LastDT returns the tick length of the most recently played frame
func (r *Replayer) LastDT() float64 {
	return r.lastDT
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return len(r.data.Frames)
}

// Data returns the replay being played
func (r *Replayer) Data() ReplayData {
	return r.data
}

// Reset resets the replayer to the beginning
func (r *Replayer) Reset() {
	r.frame = 0
	r.lastDT = 0
}
