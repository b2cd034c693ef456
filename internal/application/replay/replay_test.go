package replay

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/stepper/internal/application/output"
	"github.com/younwookim/stepper/internal/application/system"
	"github.com/younwookim/stepper/internal/domain/entity"
	"github.com/younwookim/stepper/internal/domain/motion"
)

func createTestScheduler(bounds *motion.Bounds) (*system.Scheduler, *entity.Body) {
	gravity := &motion.Force{Name: "gravity", Vector: mgl64.Vec3{0, -20, 0}}
	s := system.NewScheduler(system.Options{
		Gravity:        gravity,
		MovementBounds: bounds,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	body := entity.NewBody(mgl64.Vec3{}, 0)
	body.OnGround = true
	body.ApplyForce(gravity)
	return s, body
}

// recordTestSession drives a scheduler through a scripted session
func recordTestSession(t *testing.T) (*Recorder, *entity.Body) {
	t.Helper()

	s, body := createTestScheduler(&motion.Bounds{MaxX: motion.Float(3)})
	body.Pos = mgl64.Vec3{1, 0, 2}
	body.Yaw = 0.3
	s.SetTarget(body)
	rec := NewRecorder(s)

	dts := []float64{16.7, 33.3, 8, 16.6667, 50}
	for f := 0; f < 150; f++ {
		switch f {
		case 0:
			rec.Write(motion.Command{Forward: motion.Float(2), Duration: motion.Float(500)})
			rec.Write(motion.Command{Rotate: motion.Float(1.1), Duration: motion.Float(300)})
		case 5:
			rec.Rotate(output.RotationDelta{DX: 0.2, DY: -0.1})
		case 30:
			rec.Write(motion.Command{MoveTo: &motion.Point{X: -1, Y: 0, Z: 4}, Height: motion.Float(1)})
		case 45:
			rec.Reset()
		case 46:
			rec.Write(motion.Command{TranslateX: motion.Float(5), Right: motion.Float(1), Duration: motion.Float(700)})
			rec.Write(motion.Command{Backward: motion.Float(0.5), Jump: true})
		case 100:
			final := motion.Command{Left: motion.Float(0.25), Duration: motion.Float(200)}
			rec.End(&final)
		}
		rec.Tick(dts[f%len(dts)])
	}
	return rec, body
}

func replayOnFreshBody(t *testing.T, data ReplayData) (*system.Scheduler, *entity.Body) {
	t.Helper()

	s, body := createTestScheduler(data.MovementBounds)
	replayer := NewReplayer(data)
	replayer.Prepare(body)
	s.SetTarget(body)

	played := replayer.Run(s)
	require.Equal(t, len(data.Frames), played)
	return s, body
}

func TestRecorder_RecordFrame(t *testing.T) {
	s, body := createTestScheduler(nil)
	body.Pos = mgl64.Vec3{1, 2, 3}
	s.SetTarget(body)

	rec := NewRecorder(s)
	assert.True(t, rec.IsRecording())
	assert.Same(t, s, rec.Scheduler())

	rec.Write(motion.Command{Forward: motion.Float(1)})
	rec.Tick(16)
	rec.Tick(16)

	data := rec.GetData()
	assert.Equal(t, Version, data.Version)
	assert.True(t, data.GravityAware)
	assert.Equal(t, motion.Point{X: 1, Y: 2, Z: 3}, data.Start.Pos)
	require.Len(t, data.Frames, 2)
	assert.Equal(t, 0, data.Frames[0].F)
	assert.Equal(t, 16.0, data.Frames[0].DT)
	require.Len(t, data.Frames[0].Events, 1)
	assert.Equal(t, EventWrite, data.Frames[0].Events[0].Kind)
	assert.Empty(t, data.Frames[1].Events)
	assert.NotNil(t, s.Current(), "calls are forwarded")
}

func TestRecorder_Stop(t *testing.T) {
	s, body := createTestScheduler(nil)
	s.SetTarget(body)
	rec := NewRecorder(s)
	rec.Tick(16)

	rec.Stop()
	rec.Write(motion.Command{Forward: motion.Float(1)})
	rec.Tick(16)

	assert.False(t, rec.IsRecording())
	assert.Equal(t, 1, rec.FrameCount())
	assert.NotNil(t, s.Current(), "still forwarded after stop")
}

func TestRecorder_SaveEmpty(t *testing.T) {
	s, _ := createTestScheduler(nil)
	rec := NewRecorder(s)

	err := rec.Save(filepath.Join(t.TempDir(), "empty.json"))

	assert.Error(t, err)
}

func TestReplay_Determinism(t *testing.T) {
	rec, recorded := recordTestSession(t)
	require.Equal(t, 150, rec.FrameCount())

	for _, name := range []string{"session.json", "session.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, rec.Save(path))

			data, err := LoadReplay(path)
			require.NoError(t, err)

			s, replayed := replayOnFreshBody(t, *data)

			assert.Equal(t, recorded.Pos, replayed.Pos)
			assert.Equal(t, recorded.Yaw, replayed.Yaw)
			assert.Equal(t, rec.Scheduler().QueueLen(), s.QueueLen())
			assert.Equal(t, rec.Scheduler().Output().Closed(), s.Output().Closed())
			assert.True(t, s.Output().Closed(), "session ended")
			assert.LessOrEqual(t, replayed.Pos.X(), 3.0)
		})
	}
}

func TestReplay_CompressedIsZstd(t *testing.T) {
	rec, _ := recordTestSession(t)
	dir := t.TempDir()
	plain := filepath.Join(dir, "a.json")
	packed := filepath.Join(dir, "a.json.zst")
	require.NoError(t, rec.Save(plain))
	require.NoError(t, rec.Save(packed))

	raw, err := os.ReadFile(packed)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 4)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4], "zstd frame magic")

	plainInfo, err := os.Stat(plain)
	require.NoError(t, err)
	assert.Less(t, int64(len(raw)), plainInfo.Size())
}

func TestLoadReplay_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadReplay(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version": "0.1", "frames": []}`), 0o644))
	_, err = LoadReplay(bad)
	assert.ErrorContains(t, err, "unsupported replay version")

	garbage := filepath.Join(dir, "garbage.json.zst")
	require.NoError(t, os.WriteFile(garbage, []byte("not zstd"), 0o644))
	_, err = LoadReplay(garbage)
	assert.Error(t, err)
}

func TestDecode_WireFormat(t *testing.T) {
	input := `{
		"version": "1.0",
		"start": {"pos": [0, 0, 0], "yaw": 0},
		"gravityAware": false,
		"frames": [
			{"f": 0, "dt": 500, "ev": [{"k": "write", "cmd": {"moveto": {"x": 2, "z": -2}}}]},
			{"f": 1, "dt": 500, "ev": [{"k": "rot", "rot": {"dx": 1}}]},
			{"f": 2, "dt": 16, "ev": [{"k": "end"}]}
		]
	}`

	data, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, data.Frames, 3)
	assert.Equal(t, EventRotate, data.Frames[1].Events[0].Kind)
	assert.Equal(t, 1.0, data.Frames[1].Events[0].Delta.DX)

	s := system.NewScheduler(system.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	body := entity.NewBody(mgl64.Vec3{}, 0)
	s.SetTarget(body)
	replayer := NewReplayer(*data)

	assert.Equal(t, 3, replayer.Run(s))
	assert.Equal(t, mgl64.Vec3{2, 0, -2}, body.Pos)
	assert.True(t, s.Output().Closed())
}

func TestEncode_RoundTrip(t *testing.T) {
	rec, _ := recordTestSession(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rec.GetData()))
	data, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, rec.GetData().Frames, data.Frames)
}

func TestReplayer_Step(t *testing.T) {
	data := ReplayData{
		Version: Version,
		Frames: []FrameInput{
			{F: 0, DT: 10, Events: []Event{{Kind: EventWrite, Command: &motion.Command{Forward: motion.Float(1)}}}},
			{F: 1, DT: 10},
			{F: 2, DT: 10, Events: []Event{{Kind: EventReset}}},
		},
	}
	s, body := createTestScheduler(nil)
	s.SetTarget(body)
	replayer := NewReplayer(data)

	assert.Equal(t, 3, replayer.TotalFrames())

	require.True(t, replayer.Step(s))
	assert.Equal(t, 1, replayer.CurrentFrame())
	assert.Equal(t, 10.0, replayer.LastDT())
	assert.NotNil(t, s.Current())

	require.True(t, replayer.Step(s))
	require.True(t, replayer.Step(s))
	assert.Nil(t, s.Current(), "reset replayed")

	assert.False(t, replayer.Step(s))
	assert.Equal(t, 3, replayer.CurrentFrame())

	replayer.Reset()
	assert.Equal(t, 0, replayer.CurrentFrame())
}

func TestGenerateFilename(t *testing.T) {
	assert.True(t, strings.HasPrefix(GenerateFilename(false), "replay_"))
	assert.True(t, strings.HasSuffix(GenerateFilename(false), ".json"))
	assert.True(t, strings.HasSuffix(GenerateFilename(true), ".json.zst"))
}
