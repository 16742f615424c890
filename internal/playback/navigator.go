package playback

import "github.com/asherp/go-for-launch/pkg/geom"

// Navigator - непрозрачная навигационная способность внешнего движка:
// "веди к точке P, доложи о прибытии". Как именно строится маршрут
// (тайлы, мосты, лестницы) - не дело движка воспроизведения.
type Navigator interface {
	NavigateTo(target geom.Vec)
	Stop()
	Arrived() bool
}
