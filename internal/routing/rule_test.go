package routing

import (
	"testing"

	"github.com/advisia/advisor/internal/model/persona"
)

func newPersonaStore() persona.Store {
	return persona.NewMemoryStore(persona.Seed())
}

func TestRuleRouterPicksMaxScore(t *testing.T) {
	router := NewRuleRouter(newPersonaStore())

	got := router.Route("comment gérer l'intégration de l'api avec notre infrastructure ?")
	if got.ID != persona.Technique {
		t.Fatalf("expected technique, got %s", got.ID)
	}
}

func TestRuleRouterDefaultsOnNoMatch(t *testing.T) {
	router := NewRuleRouter(newPersonaStore())

	got := router.Route("hello")
	if got.ID != persona.DefaultID {
		t.Fatalf("social message must resolve to default persona, got %s", got.ID)
	}
}

func TestRuleRouterDefaultWinsTies(t *testing.T) {
	router := NewRuleRouter(newPersonaStore())

	// One technique hit ("api") against one adoption hit ("formation").
	got := router.Route("une formation sur les api")
	if got.ID != persona.DefaultID {
		t.Fatalf("tie must resolve to default persona, got %s", got.ID)
	}
}

func TestRuleRouterIsDeterministic(t *testing.T) {
	router := NewRuleRouter(newPersonaStore())
	message := "quel budget prévoir pour notre stratégie data ?"

	first := router.Route(message)
	for i := 0; i < 10; i++ {
		if got := router.Route(message); got.ID != first.ID {
			t.Fatalf("routing not deterministic: %s then %s", first.ID, got.ID)
		}
	}
}
