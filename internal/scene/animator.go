package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"mod3d-renderer/internal/skeleton"
	"mod3d-renderer/internal/transform"
)

// Animator poses a skeleton from keyframe channels. It is read-only after
// Build and can drive any number of poses concurrently.
type Animator struct {
	channels []channel
}

type channel struct {
	bone int
	loop bool
	keys []keyframe
}

type keyframe struct {
	tick uint64
	t    transform.Transformation
}

// Len returns the number of animated bones.
func (a *Animator) Len() int {
	return len(a.channels)
}

// Duration is the last keyed tick of any channel.
func (a *Animator) Duration() uint64 {
	var d uint64
	for _, c := range a.channels {
		d = max(d, c.keys[len(c.keys)-1].tick)
	}
	return d
}

// Apply writes every channel's transformation at tick into pose. Bones
// without a channel are left as they are. The result depends only on tick,
// so the memoised SkeletonPose.Update stays valid.
func (a *Animator) Apply(pose *skeleton.SkeletonPose, tick uint64) {
	for i := range a.channels {
		c := &a.channels[i]
		*pose.Pose(c.bone).Transformation() = c.sample(tick)
	}
}

// sample interpolates the channel at tick: linearly for translation and
// scale, spherically for rotation. Ticks outside the keys clamp, or wrap
// for looping channels.
func (c *channel) sample(tick uint64) transform.Transformation {
	first, last := c.keys[0].tick, c.keys[len(c.keys)-1].tick
	if c.loop && last > first && tick > last {
		tick = first + (tick-first)%(last-first)
	}
	if tick <= first {
		return c.keys[0].t
	}
	if tick >= last {
		return c.keys[len(c.keys)-1].t
	}

	// keys[i-1].tick <= tick < keys[i].tick
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].tick > tick })
	a, b := c.keys[i-1], c.keys[i]
	f := float64(tick-a.tick) / float64(b.tick-a.tick)

	return transform.Transformation{
		Translation: a.t.Translation.Add(b.t.Translation.Sub(a.t.Translation).Mul(f)),
		Scale:       a.t.Scale.Add(b.t.Scale.Sub(a.t.Scale).Mul(f)),
		Rotation:    mgl64.QuatSlerp(a.t.Rotation, b.t.Rotation, f),
	}
}
