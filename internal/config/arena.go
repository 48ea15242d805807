package config

import (
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/arena/internal/model"
)

// Arena holds all configuration of the arena server.
type Arena struct {
	LogLevel string `yaml:"log_level"`

	// Simulation
	TickRate int     `yaml:"tick_rate"` // ticks per second
	Seed     uint64  `yaml:"seed"`      // 0 = time-based
	CellSize float64 `yaml:"cell_size"` // spatial grid cell edge

	Bounds  Bounds       `yaml:"bounds"`
	Player  Player       `yaml:"player"`
	Lives   Lives        `yaml:"lives"`
	Enemies []EnemySpawn `yaml:"enemies"`
	Feed    Feed         `yaml:"feed"`
	History RunHistory   `yaml:"history"`
}

// Bounds is the rectangular play area on the movement plane.
type Bounds struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// Attack configures one melee attack profile.
type Attack struct {
	Damage            int           `yaml:"damage"`
	Cooldown          time.Duration `yaml:"cooldown"`
	Radius            float64       `yaml:"radius"`
	Range             float64       `yaml:"range"`
	Windup            time.Duration `yaml:"windup"`
	Active            time.Duration `yaml:"active"`
	Recovery          time.Duration `yaml:"recovery"`
	HitMomentFraction float64       `yaml:"hit_moment_fraction"`
	EngageDistance    float64       `yaml:"engage_distance"`
	Targets           []string      `yaml:"targets"` // category names
}

// Profile converts the config to a model.AttackProfile.
func (a Attack) Profile() model.AttackProfile {
	var filter model.Category
	for _, name := range a.Targets {
		filter |= model.ParseCategory(name)
	}
	return model.AttackProfile{
		Damage:            a.Damage,
		Cooldown:          a.Cooldown,
		Radius:            a.Radius,
		Range:             a.Range,
		Windup:            a.Windup,
		Active:            a.Active,
		Recovery:          a.Recovery,
		HitMomentFraction: a.HitMomentFraction,
		EngageDistance:    a.EngageDistance,
		TargetFilter:      filter,
	}
}

// Player configures the player agent.
type Player struct {
	Name     string         `yaml:"name"`
	Spawn    model.Location `yaml:"spawn"`
	MaxHP    int            `yaml:"max_hp"`
	Radius   float64        `yaml:"radius"`
	Speed    float64        `yaml:"speed"`
	TurnRate float64        `yaml:"turn_rate"`

	// Moving against facing is slower and does not turn the body.
	BackpedalSpeed     float64 `yaml:"backpedal_speed"`     // speed multiplier
	BackpedalThreshold float64 `yaml:"backpedal_threshold"` // dot(facing, input) below this = backwards

	ClampPadding float64 `yaml:"clamp_padding"`
	Attack       Attack  `yaml:"attack"`
}

// Lives configures the respawn coordinator.
type Lives struct {
	StartLives   int             `yaml:"start_lives"`
	RespawnDelay time.Duration   `yaml:"respawn_delay"`
	SpawnPadding float64         `yaml:"spawn_padding"`
	FixedSpawn   *model.Location `yaml:"fixed_spawn"`
}

// Behavior configures the enemy state machine.
type Behavior struct {
	Speed           float64       `yaml:"speed"`
	TurnRate        float64       `yaml:"turn_rate"`
	AggroRadius     float64       `yaml:"aggro_radius"`
	LoseAggroRadius float64       `yaml:"lose_aggro_radius"`
	LoseDelay       time.Duration `yaml:"lose_delay"`
	WanderRadius    float64       `yaml:"wander_radius"`
	WanderWaitMin   time.Duration `yaml:"wander_wait_min"`
	WanderWaitMax   time.Duration `yaml:"wander_wait_max"`
	StopDistance    float64       `yaml:"stop_distance"`
	WanderPadding   float64       `yaml:"wander_padding"`
}

// EnemySpawn places Count enemies of one archetype around Position.
type EnemySpawn struct {
	Name     string         `yaml:"name"`
	Position model.Location `yaml:"position"`
	Count    int            `yaml:"count"`
	MaxHP    int            `yaml:"max_hp"`
	Radius   float64        `yaml:"radius"`
	Behavior Behavior       `yaml:"behavior"`
	Attack   Attack         `yaml:"attack"`
}

// UnmarshalYAML decodes an enemy entry over DefaultEnemy, so fields
// missing from the file keep the stock archetype values.
func (e *EnemySpawn) UnmarshalYAML(value *yaml.Node) error {
	type plain EnemySpawn
	p := plain(DefaultEnemy("Enemy", model.Location{}))
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = EnemySpawn(p)
	return nil
}

// Feed configures the websocket event feed.
type Feed struct {
	Enabled      bool          `yaml:"enabled"`
	BindAddress  string        `yaml:"bind_address"`
	Path         string        `yaml:"path"`
	QueueSize    int           `yaml:"queue_size"` // per-client outbox capacity
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RunHistory configures persistence of finished runs.
type RunHistory struct {
	Enabled  bool           `yaml:"enabled"`
	Database DatabaseConfig `yaml:"database"`
}

// DefaultPlayerAttack returns the stock player swing.
func DefaultPlayerAttack() Attack {
	return Attack{
		Damage:            5,
		Cooldown:          350 * time.Millisecond,
		Radius:            0.75,
		Range:             1.25,
		Windup:            80 * time.Millisecond,
		Active:            120 * time.Millisecond,
		Recovery:          100 * time.Millisecond,
		HitMomentFraction: 0.5,
		EngageDistance:    1.25,
		Targets:           []string{"enemy"},
	}
}

// DefaultEnemyAttack returns the stock enemy swing.
func DefaultEnemyAttack() Attack {
	return Attack{
		Damage:            2,
		Cooldown:          600 * time.Millisecond,
		Radius:            0.9,
		Range:             1.1,
		Windup:            200 * time.Millisecond,
		Active:            150 * time.Millisecond,
		Recovery:          150 * time.Millisecond,
		HitMomentFraction: 0.5,
		EngageDistance:    1.3,
		Targets:           []string{"player"},
	}
}

// DefaultBehavior returns the stock enemy behaviour.
func DefaultBehavior() Behavior {
	return Behavior{
		Speed:           2.5,
		TurnRate:        12,
		AggroRadius:     6,
		LoseAggroRadius: 9,
		LoseDelay:       1250 * time.Millisecond,
		WanderRadius:    4,
		WanderWaitMin:   1500 * time.Millisecond,
		WanderWaitMax:   3 * time.Second,
		StopDistance:    1.1,
		WanderPadding:   0.5,
	}
}

// DefaultEnemy returns a stock enemy archetype at pos.
func DefaultEnemy(name string, pos model.Location) EnemySpawn {
	return EnemySpawn{
		Name:     name,
		Position: pos,
		Count:    1,
		MaxHP:    10,
		Radius:   0.5,
		Behavior: DefaultBehavior(),
		Attack:   DefaultEnemyAttack(),
	}
}

// DefaultArena returns Arena config with sensible defaults.
func DefaultArena() Arena {
	return Arena{
		LogLevel: "info",
		TickRate: 30,
		CellSize: 4,
		Bounds: Bounds{
			MinX: -10, MinY: -10,
			MaxX: 10, MaxY: 10,
		},
		Player: Player{
			Name:               "Player",
			MaxHP:              10,
			Radius:             0.5,
			Speed:              6,
			TurnRate:           15,
			BackpedalSpeed:     0.85,
			BackpedalThreshold: -0.15,
			ClampPadding:       0.5,
			Attack:             DefaultPlayerAttack(),
		},
		Lives: Lives{
			StartLives:   3,
			RespawnDelay: 750 * time.Millisecond,
			SpawnPadding: 0.8,
		},
		Enemies: []EnemySpawn{
			DefaultEnemy("Slime", model.NewLocation(6, 6, 0)),
			DefaultEnemy("Slime", model.NewLocation(-6, 6, 0)),
			DefaultEnemy("Slime", model.NewLocation(0, -7, 0)),
		},
		Feed: Feed{
			Enabled:      true,
			BindAddress:  "127.0.0.1:8080",
			Path:         "/events",
			QueueSize:    256,
			WriteTimeout: 5 * time.Second,
		},
		History: RunHistory{
			Database: DefaultDatabase(),
		},
	}
}

// LoadArena loads arena config from a YAML file and normalizes it.
// If the file doesn't exist, returns defaults.
func LoadArena(path string) (Arena, error) {
	cfg := DefaultArena()
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fixes invalid values in place. Every fix is logged.
// Returns number of fixes applied.
func (c *Arena) Normalize() int {
	n := 0
	warn := func(field string, from, to any) {
		n++
		slog.Warn("config value normalized", "field", field, "from", from, "to", to)
	}

	if c.TickRate <= 0 {
		warn("tick_rate", c.TickRate, 30)
		c.TickRate = 30
	}
	if c.CellSize <= 0 {
		warn("cell_size", c.CellSize, 4.0)
		c.CellSize = 4
	}
	if c.Bounds.MinX > c.Bounds.MaxX {
		warn("bounds.x", [2]float64{c.Bounds.MinX, c.Bounds.MaxX}, "swapped")
		c.Bounds.MinX, c.Bounds.MaxX = c.Bounds.MaxX, c.Bounds.MinX
	}
	if c.Bounds.MinY > c.Bounds.MaxY {
		warn("bounds.y", [2]float64{c.Bounds.MinY, c.Bounds.MaxY}, "swapped")
		c.Bounds.MinY, c.Bounds.MaxY = c.Bounds.MaxY, c.Bounds.MinY
	}

	if c.Player.MaxHP < 1 {
		warn("player.max_hp", c.Player.MaxHP, 1)
		c.Player.MaxHP = 1
	}
	if c.Player.BackpedalSpeed < 0 || c.Player.BackpedalSpeed > 1 {
		to := min(max(c.Player.BackpedalSpeed, 0), 1)
		warn("player.backpedal_speed", c.Player.BackpedalSpeed, to)
		c.Player.BackpedalSpeed = to
	}
	normalizeAttack("player.attack", &c.Player.Attack, warn)

	if c.Lives.StartLives < 0 {
		warn("lives.start_lives", c.Lives.StartLives, 0)
		c.Lives.StartLives = 0
	}
	if c.Lives.RespawnDelay < 0 {
		warn("lives.respawn_delay", c.Lives.RespawnDelay, 0)
		c.Lives.RespawnDelay = 0
	}

	for i := range c.Enemies {
		e := &c.Enemies[i]
		prefix := "enemies[" + e.Name + "]"
		if e.Count < 1 {
			warn(prefix+".count", e.Count, 1)
			e.Count = 1
		}
		if e.MaxHP < 1 {
			warn(prefix+".max_hp", e.MaxHP, 1)
			e.MaxHP = 1
		}
		normalizeBehavior(prefix+".behavior", &e.Behavior, warn)
		normalizeAttack(prefix+".attack", &e.Attack, warn)
	}

	if c.Feed.QueueSize <= 0 {
		warn("feed.queue_size", c.Feed.QueueSize, 256)
		c.Feed.QueueSize = 256
	}

	return n
}

type warnFunc func(field string, from, to any)

func normalizeAttack(prefix string, a *Attack, warn warnFunc) {
	for _, d := range []struct {
		name string
		v    *time.Duration
	}{
		{"cooldown", &a.Cooldown},
		{"windup", &a.Windup},
		{"active", &a.Active},
		{"recovery", &a.Recovery},
	} {
		if *d.v < 0 {
			warn(prefix+"."+d.name, *d.v, time.Duration(0))
			*d.v = 0
		}
	}
	if a.HitMomentFraction < 0 || a.HitMomentFraction > 1 {
		to := min(max(a.HitMomentFraction, 0), 1)
		warn(prefix+".hit_moment_fraction", a.HitMomentFraction, to)
		a.HitMomentFraction = to
	}
	if a.Damage < 0 {
		warn(prefix+".damage", a.Damage, 0)
		a.Damage = 0
	}
	if a.Radius < 0 {
		warn(prefix+".radius", a.Radius, 0.0)
		a.Radius = 0
	}
	if a.Profile().TargetFilter == 0 {
		slog.Warn("attack has no valid targets and will never hit", "field", prefix+".targets", "targets", a.Targets)
	}
}

func normalizeBehavior(prefix string, b *Behavior, warn warnFunc) {
	if b.AggroRadius < 0 {
		warn(prefix+".aggro_radius", b.AggroRadius, 0.0)
		b.AggroRadius = 0
	}
	if b.LoseAggroRadius <= b.AggroRadius {
		to := b.AggroRadius * 1.5
		if b.AggroRadius == 0 {
			to++
		}
		warn(prefix+".lose_aggro_radius", b.LoseAggroRadius, to)
		b.LoseAggroRadius = to
	}
	for _, d := range []struct {
		name string
		v    *time.Duration
	}{
		{"lose_delay", &b.LoseDelay},
		{"wander_wait_min", &b.WanderWaitMin},
		{"wander_wait_max", &b.WanderWaitMax},
	} {
		if *d.v < 0 {
			warn(prefix+"."+d.name, *d.v, time.Duration(0))
			*d.v = 0
		}
	}
	if b.WanderWaitMin > b.WanderWaitMax {
		warn(prefix+".wander_wait", [2]time.Duration{b.WanderWaitMin, b.WanderWaitMax}, "swapped")
		b.WanderWaitMin, b.WanderWaitMax = b.WanderWaitMax, b.WanderWaitMin
	}
	if b.StopDistance < 0 {
		warn(prefix+".stop_distance", b.StopDistance, 0.0)
		b.StopDistance = 0
	}
}
