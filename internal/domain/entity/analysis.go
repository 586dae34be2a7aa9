package entity

// Region тёмная связная область, найденная по контуру
type Region struct {
	X      int     // координата X левого верхнего угла
	Y      int     // координата Y левого верхнего угла
	Width  int     // ширина ограничивающего прямоугольника
	Height int     // высота ограничивающего прямоугольника
	Area   float64 // площадь внутри контура в пикселях
}

// Center возвращает координаты центра области
func (r Region) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// AnalysisResult итог эвристического анализа одного кадра.
type AnalysisResult struct {
	Redness          float64  // доля красных пикселей, 0..1
	BruiseDetected   bool     // найдена крупная тёмная область
	SwellingFraction float64  // площадь крупнейшей области к площади кадра, 0..1
	Regions          []Region // области крупнее порога синяка
	Preview          Frame    // кадр с наложенной маской красноты
}
