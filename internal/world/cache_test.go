package world

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mvanryn/worldweaver/domain/entities"
)

func TestCache_ReadBeforeInstall(t *testing.T) {
	cache := NewCache()

	_, ok := cache.Read()
	if ok {
		t.Error("Expected ok=false before any snapshot is installed")
	}
}

func TestCache_InstallReplacesWholesale(t *testing.T) {
	cache := NewCache()

	first := entities.WorldSnapshot{
		RequestID:  "req-1",
		ReportedAt: time.Now(),
		Objects: map[string]entities.ObjectState{
			"tree_1": {Position: entities.Vector3{X: 1, Z: 1}},
			"rock_1": {Position: entities.Vector3{X: 5, Z: 5}},
		},
	}
	cache.Install(first)

	second := entities.WorldSnapshot{
		RequestID:  "req-2",
		ReportedAt: time.Now(),
		Objects: map[string]entities.ObjectState{
			"lamp_1": {Position: entities.Vector3{X: -3, Z: 2}},
		},
	}
	cache.Install(second)

	got, ok := cache.Read()
	if !ok {
		t.Fatal("Expected a snapshot after install")
	}
	if got.RequestID != "req-2" {
		t.Errorf("Expected request ID req-2, got %s", got.RequestID)
	}
	if len(got.Objects) != 1 {
		t.Errorf("Expected snapshot to be replaced, not merged; got %d objects", len(got.Objects))
	}
	if _, exists := got.Objects["tree_1"]; exists {
		t.Error("Object from the previous snapshot leaked into the new one")
	}
}

func TestCache_ConcurrentInstallAndRead(t *testing.T) {
	cache := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Install(entities.WorldSnapshot{
					RequestID: fmt.Sprintf("req-%d-%d", n, j),
					Objects: map[string]entities.ObjectState{
						"obj": {Position: entities.Vector3{X: float64(j)}},
					},
				})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if snap, ok := cache.Read(); ok && len(snap.Objects) != 1 {
					t.Error("Read observed a partially installed snapshot")
					return
				}
			}
		}()
	}
	wg.Wait()
}
