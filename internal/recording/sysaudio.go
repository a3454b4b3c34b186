package recording

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/clipdr/studio-engine/internal/logging"
	"github.com/clipdr/studio-engine/internal/privacy"
	"github.com/clipdr/studio-engine/internal/ring"
)

var sysAudioLogger = logging.ForService("recording-sysaudio")

// systemAudioCandidates are tried in order; the first one found on PATH
// wins. parec (PulseAudio) is preferred, pw-record covers PipeWire-only
// hosts, parecord is an older PulseAudio alias still seen in the wild.
var systemAudioCandidates = []string{"parec", "pw-record", "parecord"}

const (
	systemAudioSampleRate = 44100
	systemAudioChannels   = 2
)

// systemAudioProcess captures the desktop's audio output (loopback) via
// a subprocess, since neither Pulse nor malgo expose a portable "record
// what's playing" API. A reader goroutine always updates the peak level;
// when ring is set, it also feeds that ring, letting monitoring and an
// active recording session share one subprocess.
type systemAudioProcess struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc

	mu    sync.Mutex
	ring  *ring.Buffer
	level atomic.Uint32

	done chan struct{}
}

// startSystemAudio launches the first available capture tool and begins
// streaming raw interleaved f32le PCM from its stdout.
func startSystemAudio(ctx context.Context) (*systemAudioProcess, error) {
	binPath, args, err := resolveSystemAudioTool()
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, binPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, errors.New(err).Component("recording").Category(errors.CategoryResource).
			Context("operation", "stdout_pipe").Build()
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, errors.New(err).Component("recording").Category(errors.CategoryResource).
			Context("operation", "stderr_pipe").Build()
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, errors.New(err).Component("recording").Category(errors.CategoryResource).
			Context("operation", "start").Context("tool", binPath).Build()
	}

	p := &systemAudioProcess{cmd: cmd, cancel: cancel, done: make(chan struct{})}

	go p.readAudio(stdout)
	go p.readErrors(stderr)

	return p, nil
}

func resolveSystemAudioTool() (string, []string, error) {
	for _, name := range systemAudioCandidates {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		switch name {
		case "parec", "parecord":
			return path, []string{"--format=float32le", "--rate=44100", "--channels=2", "--raw"}, nil
		case "pw-record":
			return path, []string{"--format=f32", "--rate=44100", "--channels=2", "-"}, nil
		}
	}
	return "", nil, errors.Newf("no system audio capture tool found on PATH (tried parec, pw-record, parecord)").
		Component("recording").
		Category(errors.CategoryNotFound).
		Build()
}

// SetRing attaches (or detaches, with nil) the ring a live recording
// session wants system audio pushed into.
func (p *systemAudioProcess) SetRing(r *ring.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ring = r
}

// Level returns the current peak level observed from system audio.
func (p *systemAudioProcess) Level() float32 {
	return math.Float32frombits(p.level.Load())
}

// Stop terminates the subprocess and waits for its reader goroutines to
// exit.
func (p *systemAudioProcess) Stop() {
	p.cancel()
	_ = p.cmd.Wait()
	<-p.done
}

func (p *systemAudioProcess) readAudio(stdout io.Reader) {
	defer close(p.done)

	const frameBytes = 8 // stereo f32le
	buf := make([]byte, 4096*frameBytes)
	var samples []float32

	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			frames := n / 4
			if cap(samples) < frames {
				samples = make([]float32, frames)
			} else {
				samples = samples[:frames]
			}
			for i := 0; i < frames; i++ {
				bits := binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
				samples[i] = math.Float32frombits(bits)
			}

			var peak float32
			for _, s := range samples {
				if s < 0 {
					s = -s
				}
				if s > peak {
					peak = s
				}
			}
			p.level.Store(math.Float32bits(peak))

			p.mu.Lock()
			r := p.ring
			p.mu.Unlock()
			if r != nil {
				r.Write(samples)
			}
		}
		if err != nil {
			return
		}
	}
}

func (p *systemAudioProcess) readErrors(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sysAudioLogger.Debug("system audio tool stderr", "message", privacy.ScrubMessage(line))
	}
}
