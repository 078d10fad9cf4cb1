package wallpaper

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"swarmgen/logging"
)

// Setter changes the wallpaper of one display. Display indexes are
// zero-based.
type Setter interface {
	Set(ctx context.Context, imagePath string, display int) error
}

// DisplayCounter reports how many displays are connected.
type DisplayCounter interface {
	Count(ctx context.Context) (int, error)
}

// Options configures a Rotator.
type Options struct {
	// Dirs are the image directories, one per managed display. When
	// there are fewer directories than displays, the last one repeats.
	Dirs []string

	// Interval between wallpaper changes. Default 30 seconds.
	Interval time.Duration

	// Sort walks images in name order instead of shuffling.
	Sort bool

	// Displays restricts rotation to specific zero-based displays.
	// Empty manages every connected display.
	Displays []int

	// Seed makes shuffle order reproducible in tests. Zero uses the
	// current time.
	Seed int64
}

// displayQueue is the rotation state for one display.
type displayQueue struct {
	display int
	dir     string
	images  []string
	index   int
	state   DirState
}

// Rotator cycles wallpapers across displays until its context ends.
type Rotator struct {
	setter   Setter
	counter  DisplayCounter
	opts     Options
	log      *logging.Logger
	rng      *rand.Rand
	queues   []*displayQueue
	rotation int
}

// NewRotator validates the options and scans the directories once up
// front, so a bad directory fails before the first interval elapses.
func NewRotator(ctx context.Context, setter Setter, counter DisplayCounter, opts Options, log *logging.Logger) (*Rotator, error) {
	if setter == nil {
		return nil, fmt.Errorf("wallpaper: setter cannot be nil")
	}
	if counter == nil {
		return nil, fmt.Errorf("wallpaper: display counter cannot be nil")
	}
	if len(opts.Dirs) == 0 {
		return nil, fmt.Errorf("wallpaper: at least one image directory is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if log == nil {
		log = logging.NewNop()
	}

	numDisplays, err := counter.Count(ctx)
	if err != nil {
		return nil, err
	}

	managed := opts.Displays
	if len(managed) == 0 {
		managed = make([]int, numDisplays)
		for i := range managed {
			managed[i] = i
		}
	} else {
		valid := managed[:0]
		for _, d := range managed {
			if d < numDisplays {
				valid = append(valid, d)
			} else {
				log.Warnw("display not connected", "display", d+1, "connected", numDisplays)
			}
		}
		if len(valid) == 0 {
			return nil, fmt.Errorf("wallpaper: no valid displays selected (%d connected)", numDisplays)
		}
		managed = valid
	}

	r := &Rotator{
		setter:  setter,
		counter: counter,
		opts:    opts,
		log:     log.Named("wallpaper"),
		rng:     rand.New(rand.NewSource(opts.Seed)),
	}

	for i, display := range managed {
		dirIndex := i
		if dirIndex >= len(opts.Dirs) {
			dirIndex = len(opts.Dirs) - 1
		}
		dir := opts.Dirs[dirIndex]

		queue := &displayQueue{display: display, dir: dir}
		if err := r.loadQueue(queue); err != nil {
			return nil, err
		}
		r.queues = append(r.queues, queue)
		r.log.Infow("display queue ready",
			"display", display+1,
			"dir", dir,
			"images", len(queue.images))
	}
	return r, nil
}

// Run rotates until the context is canceled. The first rotation happens
// immediately; later ones every interval.
func (r *Rotator) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		r.Rotate(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Rotate advances every display by one wallpaper. Directory changes are
// picked up here, and a completed cycle reshuffles the queue.
func (r *Rotator) Rotate(ctx context.Context) {
	for _, queue := range r.queues {
		if state, err := State(queue.dir); err == nil && state != queue.state {
			r.log.Infow("directory changed, reloading", "dir", queue.dir)
			if err := r.loadQueue(queue); err != nil {
				r.log.Warnw("reload failed", "dir", queue.dir, "error", err.Error())
			}
		}

		image := queue.images[queue.index]
		if err := r.setter.Set(ctx, image, queue.display); err != nil {
			r.log.Warnw("setting wallpaper failed",
				"display", queue.display+1,
				"image", image,
				"error", err.Error())
		}

		queue.index = (queue.index + 1) % len(queue.images)
		if queue.index == 0 && !r.opts.Sort && r.rotation > 0 {
			r.shuffle(queue.images)
		}
	}
	r.rotation++
}

func (r *Rotator) loadQueue(queue *displayQueue) error {
	images, err := ScanDir(queue.dir)
	if err != nil {
		return err
	}
	if !r.opts.Sort {
		r.shuffle(images)
	}
	state, err := State(queue.dir)
	if err != nil {
		return err
	}
	queue.images = images
	queue.index = 0
	queue.state = state
	return nil
}

func (r *Rotator) shuffle(images []string) {
	r.rng.Shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})
}
