package scene

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Shopify/go-lua"
)

// ExecuteScript runs a Lua snippet against the scene and returns the
// output captured from print. The script gets a `scene` table bound to
// this Scene; like every other handler path it runs on the main
// execution context, so it may mutate freely.
func (s *Scene) ExecuteScript(code string) (string, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)

	var out bytes.Buffer
	l.Register("print", func(l *lua.State) int {
		n := l.Top()
		for i := 1; i <= n; i++ {
			if i > 1 {
				out.WriteByte('\t')
			}
			out.WriteString(valueString(l, i))
		}
		out.WriteByte('\n')
		return 0
	})

	s.registerAPI(l)

	if err := lua.DoString(l, code); err != nil {
		return "", fmt.Errorf("script error: %v", err)
	}
	return out.String(), nil
}

// registerAPI binds the scene table into the Lua state.
func (s *Scene) registerAPI(l *lua.State) {
	fns := []lua.RegistryFunction{
		{Name: "object_count", Function: func(l *lua.State) int {
			l.PushInteger(s.Count())
			return 1
		}},
		{Name: "material_count", Function: func(l *lua.State) int {
			l.PushInteger(s.MaterialCount())
			return 1
		}},
		{Name: "exists", Function: func(l *lua.State) int {
			l.PushBoolean(s.Get(lua.CheckString(l, 1)) != nil)
			return 1
		}},
		{Name: "add", Function: func(l *lua.State) int {
			name := lua.CheckString(l, 1)
			kind := lua.CheckString(l, 2)
			if s.Get(name) != nil {
				lua.Errorf(l, "entity already exists: %s", name)
			}
			s.Add(&Entity{Name: name, Kind: kind, Visible: true})
			return 0
		}},
		{Name: "remove", Function: func(l *lua.State) int {
			l.PushBoolean(s.Remove(lua.CheckString(l, 1)))
			return 1
		}},
		{Name: "move", Function: func(l *lua.State) int {
			name := lua.CheckString(l, 1)
			e := s.Get(name)
			if e == nil {
				lua.Errorf(l, "entity not found: %s", name)
			}
			e.Location = [3]float64{
				lua.CheckNumber(l, 2),
				lua.CheckNumber(l, 3),
				lua.CheckNumber(l, 4),
			}
			return 0
		}},
		{Name: "location", Function: func(l *lua.State) int {
			name := lua.CheckString(l, 1)
			e := s.Get(name)
			if e == nil {
				lua.Errorf(l, "entity not found: %s", name)
			}
			l.PushNumber(e.Location[0])
			l.PushNumber(e.Location[1])
			l.PushNumber(e.Location[2])
			return 3
		}},
	}

	l.NewTable()
	lua.SetFunctions(l, fns, 0)
	l.SetGlobal("scene")
}

func valueString(l *lua.State, index int) string {
	switch l.TypeOf(index) {
	case lua.TypeNil:
		return "nil"
	case lua.TypeBoolean:
		return strconv.FormatBool(l.ToBoolean(index))
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return strconv.FormatFloat(n, 'g', -1, 64)
	case lua.TypeString:
		str, _ := l.ToString(index)
		return str
	default:
		return lua.TypeNameOf(l, index)
	}
}
