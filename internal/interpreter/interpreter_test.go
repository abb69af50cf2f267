package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	interp := New(nil)

	tests := []struct {
		name string
		text string
		want Command
	}{
		{"empty string", "", Command{}},
		{"no keywords", "hello world", Command{}},
		{"template without intent", "myapp 3", Command{}},
		{"deploy", "deploy myapp", Command{Action: ActionDeploy, Target: "myapp"}},
		{"create synonym", "create nginx please", Command{Action: ActionDeploy, Target: "nginx"}},
		{"launch synonym", "Launch Redis", Command{Action: ActionDeploy, Target: "redis"}},
		{"deploy unknown template", "deploy postgres", Command{Action: ActionDeploy}},
		{"scale with count", "scale myapp to 3", Command{Action: ActionScale, Target: "myapp", Value: 3}},
		{"resize synonym", "resize nginx 12", Command{Action: ActionScale, Target: "nginx", Value: 12}},
		{"scale without digits", "scale myapp", Command{Action: ActionScale, Target: "myapp"}},
		{"scale to zero", "scale myapp to 0", Command{Action: ActionScale, Target: "myapp"}},
		{"scale first digit run wins", "scale myapp to 4 or 5", Command{Action: ActionScale, Target: "myapp", Value: 4}},
		{"scale overflow", "scale myapp to 99999999999", Command{Action: ActionScale, Target: "myapp"}},
		{"scale digits glued to word", "scale myapp x7", Command{Action: ActionScale, Target: "myapp", Value: 7}},
		{"scale unknown template", "scale postgres to 3", Command{Action: ActionScale, Value: 3}},
		{"delete", "delete redis", Command{Action: ActionDelete, Target: "redis"}},
		{"remove synonym", "remove myapp", Command{Action: ActionDelete, Target: "myapp"}},
		{"destroy synonym", "DESTROY nginx!", Command{Action: ActionDelete, Target: "nginx"}},
		{"list", "list pods", Command{Action: ActionList}},
		{"show synonym", "show me the pods", Command{Action: ActionList}},
		{"list with template", "list nginx", Command{Action: ActionList, Target: "nginx"}},
		{"list ignores digits", "list 5 pods", Command{Action: ActionList}},
		{"deploy beats delete", "delete and deploy myapp", Command{Action: ActionDeploy, Target: "myapp"}},
		{"scale beats list", "show scale of nginx 2", Command{Action: ActionScale, Target: "nginx", Value: 2}},
		{"last template wins", "deploy nginx or redis", Command{Action: ActionDeploy, Target: "redis"}},
		{"punctuation separates tokens", "deploy,myapp.", Command{Action: ActionDeploy, Target: "myapp"}},
		{"keyword must be whole token", "redeployment of myapp", Command{}},
		{"template must be whole token", "deploy myapplication", Command{Action: ActionDeploy}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interp.Interpret(tt.text))
		})
	}
}

func TestInterpret_Idempotent(t *testing.T) {
	interp := New(nil)

	inputs := []string{"", "deploy myapp", "scale nginx to 7", "list pods", "garbage 123"}
	for _, in := range inputs {
		assert.Equal(t, interp.Interpret(in), interp.Interpret(in), in)
	}
}

func TestInterpret_NoKeywordMeansNone(t *testing.T) {
	interp := New(nil)

	inputs := []string{
		"myapp",
		"nginx 3",
		"what is running",
		"12345",
		"please help with redis",
	}
	for _, in := range inputs {
		assert.Equal(t, ActionNone, interp.Interpret(in).Action, in)
	}
}

func TestInterpret_CustomCatalog(t *testing.T) {
	catalog, err := NewCatalog(Template{Name: "api-server", Image: "example/api:1.0", Port: 8080})
	assert.NoError(t, err)

	interp := New(catalog)

	assert.Equal(t, Command{Action: ActionDeploy, Target: "api-server"}, interp.Interpret("deploy api-server"))
	assert.Equal(t, Command{Action: ActionDeploy}, interp.Interpret("deploy nginx"))
	assert.Same(t, catalog, interp.Catalog())
}

func TestAction(t *testing.T) {
	tests := []struct {
		action         Action
		name           string
		requiresTarget bool
	}{
		{ActionNone, "none", false},
		{ActionDeploy, "deploy", true},
		{ActionScale, "scale", true},
		{ActionDelete, "delete", true},
		{ActionList, "list", false},
		{Action(42), "none", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.action.String())
			assert.Equal(t, tt.requiresTarget, tt.action.RequiresTarget())
		})
	}
}

func TestCommand_HasTargetAndValue(t *testing.T) {
	assert.False(t, Command{}.HasTarget())
	assert.False(t, Command{}.HasValue())
	assert.True(t, Command{Target: "nginx"}.HasTarget())
	assert.True(t, Command{Value: 1}.HasValue())
}
