package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ServiceScript is the landmark service shipped under scripts/.
const ServiceScript = "mediapipe_service.py"

// ErrServiceNotFound is returned when the landmark service script is missing.
var ErrServiceNotFound = errors.New(ServiceScript + " not found")

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Frames are sent as length-prefixed JPEG; the service answers with one JSON
// line per frame holding normalized landmarks, which are scaled to the frame
// size before being returned. The process starts on the first frame and is
// stopped after Config.IdleTimeoutSec without frames.
type MediaPipeDetector struct {
	config    Config
	script    string
	python    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	idleTimer *time.Timer
	idleGen   uint64
}

// NewMediaPipeDetector locates the service script and interpreter. Explicit
// paths in config win over the search locations.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = findFile(searchPaths(filepath.Join("scripts", ServiceScript))...)
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, err)
	}

	python := config.PythonPath
	if python == "" {
		python = findFile(searchPaths(filepath.Join("venv", "bin", "python"))...)
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
	}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.start(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	hands, err := exchange(d.stdin, d.stdout, buf.GetBytes(), float64(frame.Cols()), float64(frame.Rows()))
	if err != nil {
		// A broken pipe leaves the service unusable; restart on the next frame.
		d.stop()
		return nil, err
	}

	d.armIdleTimer()
	return hands, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

func (d *MediaPipeDetector) start() error {
	if d.cmd != nil {
		return nil
	}

	cmd := exec.Command(d.python, d.serviceArgs()...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	return nil
}

func (d *MediaPipeDetector) serviceArgs() []string {
	args := []string{d.script}
	if d.config.MaxHands > 0 {
		args = append(args, "--max-hands", strconv.Itoa(d.config.MaxHands))
	}
	if d.config.MinConfidence > 0 {
		args = append(args, "--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64))
	}
	if d.config.MinTrackingConf > 0 {
		args = append(args, "--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64))
	}
	return args
}

func (d *MediaPipeDetector) stop() error {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	d.idleGen++
	if d.cmd == nil {
		return nil
	}

	d.stdin.Close()
	err := d.cmd.Wait()
	d.cmd, d.stdin, d.stdout = nil, nil, nil
	return err
}

func (d *MediaPipeDetector) armIdleTimer() {
	if d.config.IdleTimeoutSec <= 0 {
		return
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleGen++
	gen := d.idleGen
	d.idleTimer = time.AfterFunc(time.Duration(d.config.IdleTimeoutSec)*time.Second, func() {
		d.idleStop(gen)
	})
}

// idleStop stops the service unless the timer for gen was re-armed or
// stopped while the callback waited for the lock.
func (d *MediaPipeDetector) idleStop(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.idleGen {
		return
	}
	d.stop()
}

// exchange sends one JPEG frame and reads the service's answer for it.
func exchange(w io.Writer, r *bufio.Reader, jpeg []byte, width, height float64) ([]HandLandmarks, error) {
	if err := writeFrame(w, jpeg); err != nil {
		return nil, err
	}
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return parseResponse(line, width, height)
}

// writeFrame writes a big-endian uint32 length followed by the payload.
func writeFrame(w io.Writer, payload []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	if _, err := w.Write(length[:]); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// searchPaths lists where a support file may live: the working directory,
// its parent, next to the executable and under ~/.pinchmaze.
func searchPaths(rel string) []string {
	paths := []string{rel, filepath.Join("..", rel)}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".pinchmaze", rel))
	}
	return paths
}

// findFile returns the absolute path of the first existing candidate.
func findFile(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// parseResponse decodes one service line and scales the landmarks to pixels.
// Hands with more than NumLandmarks points are truncated; shorter ones are
// kept as partial detections.
func parseResponse(line []byte, width, height float64) ([]HandLandmarks, error) {
	var response struct {
		Hands []HandLandmarks `json:"hands"`
		Error string          `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", response.Error)
	}

	result := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		if len(h.Points) > NumLandmarks {
			h.Points = h.Points[:NumLandmarks]
		}
		result = append(result, *h.Scale(width, height))
	}
	return result, nil
}
