package script

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

//go:embed scripts/*.tengo
var builtinFS embed.FS

const ext = ".tengo"

// Load reads a script from disk, falling back to the built-in script of the
// same name ("whip" and "whip.tengo" both resolve).
func Load(name string) ([]byte, error) {
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	clean := strings.TrimSuffix(path.Base(name), ext) + ext
	data, err := builtinFS.ReadFile("scripts/" + clean)
	if err != nil {
		return nil, fmt.Errorf("script %s: not a file or built-in script", name)
	}
	return data, nil
}

func Builtins() []string {
	entries, _ := builtinFS.ReadDir("scripts")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names
}

// Env is what a script can see of the world it drives.
type Env struct {
	Frames int
	Balls  []dynamo.Vec2
}

// Interactions runs a Tengo program and collects what it schedules through
// grab(frame, x, y), pull(frame, x, y) and release(frame). The globals frames
// and balls ([[x, y], ...] initial positions) describe the world. Only the
// math, text, fmt and rand modules can be imported.
func Interactions(ctx context.Context, src []byte, env Env) ([]sim.Interaction, error) {
	out := make([]sim.Interaction, 0)

	balls := make([]interface{}, len(env.Balls))
	for i, p := range env.Balls {
		balls[i] = []interface{}{p.X, p.Y}
	}

	s := tengo.NewScript(src)
	s.SetImports(stdlib.GetModuleMap("math", "text", "fmt", "rand"))
	if err := s.Add("frames", env.Frames); err != nil {
		return nil, err
	}
	if err := s.Add("balls", balls); err != nil {
		return nil, err
	}
	for _, action := range []string{sim.ActionGrab, sim.ActionPull, sim.ActionRelease} {
		fn := &tengo.UserFunction{Name: action, Value: schedule(action, &out)}
		if err := s.Add(action, fn); err != nil {
			return nil, err
		}
	}

	if _, err := s.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("run script: %w", err)
	}
	for _, in := range out {
		if err := in.Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func schedule(action string, out *[]sim.Interaction) tengo.CallableFunc {
	want := 3
	if action == sim.ActionRelease {
		want = 1
	}
	return func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != want {
			return nil, tengo.ErrWrongNumArguments
		}
		frame, ok := tengo.ToInt(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "frame", Expected: "int", Found: args[0].TypeName()}
		}
		in := sim.Interaction{Frame: frame, Action: action}
		if want == 3 {
			if in.X, ok = tengo.ToFloat64(args[1]); !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "x", Expected: "float", Found: args[1].TypeName()}
			}
			if in.Y, ok = tengo.ToFloat64(args[2]); !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "y", Expected: "float", Found: args[2].TypeName()}
			}
		}
		*out = append(*out, in)
		return tengo.UndefinedValue, nil
	}
}
