// Package tips serves short training advice drawn from bodyweight and
// martial-arts practice books.
package tips

import "math/rand"

var tips = []string{
	"Дыхание ведёт движение: выдох на усилии, вдох на возврате.",
	"Медленное опускание строит силу быстрее, чем быстрый подъём.",
	"Рекорд ставится один раз, а подтверждается регулярностью.",
	"Стойка на кулаках укрепляет запястья для ударной работы.",
	"Лучше пять чистых повторений, чем десять с ломаной формой.",
	"Форму тайцзи полезно пройти хотя бы раз в день, даже без остального.",
	"Усталость в одной группе мышц — повод нагрузить другую, а не отдыхать совсем.",
	"Пульс после подхода расскажет о восстановлении больше, чем ощущения.",
	"Складной нож работает весь пресс, только если поясница прижата.",
	"Мостик раскрывает грудной отдел, зажатый после отжиманий.",
	"Пистолетик сначала осваивают у опоры, глубина важнее баланса.",
	"Связки ударов на счёт дисциплинируют дыхание и плечи.",
}

// Random returns one tip. The zero-argument rand source is fine here; tips
// carry no state.
func Random() string {
	return tips[rand.Intn(len(tips))]
}

// All returns every tip in declaration order.
func All() []string {
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}
