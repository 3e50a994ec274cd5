package domain

import "strconv"

// Ids de mercado del feed. El rango [15, 42] son los mercados de marcador
// exacto; la liquidación de un evento siempre incluye exactamente uno.
const (
	correctScoreFirst = 15
	correctScoreLast  = 42

	// Mercado 1X2 y sus cuotas.
	MarketMatchWinner = 1
	OddHomeWin        = 210
	OddAwayWin        = 211
	OddDraw           = 212
)

// correctScores mapea cada id de mercado de marcador exacto a su resultado.
// La enumeración del feed va por goles totales ascendente y, dentro de cada
// total, por goles del local ascendente: 15=0:0, 16=0:1, 17=1:0, ...
var correctScores = func() map[int]Score {
	m := make(map[int]Score, correctScoreLast-correctScoreFirst+1)
	id := correctScoreFirst
	for total := 0; total <= 6; total++ {
		for home := 0; home <= total; home++ {
			m[id] = Score{Home: home, Away: total - home}
			id++
		}
	}
	return m
}()

// ScoreFromWonMarkets extrae el marcador final de la lista de mercados
// ganados de un evento. Devuelve false si ningún id cae en el rango de
// marcador exacto (respuesta corrupta).
func ScoreFromWonMarkets(won []string) (Score, bool) {
	for _, w := range won {
		id, err := strconv.Atoi(w)
		if err != nil {
			continue
		}
		if score, ok := correctScores[id]; ok {
			return score, true
		}
	}
	return Score{}, false
}

// WonMarketIDs convierte la lista de mercados ganados a ints, descartando
// entradas no numéricas.
func WonMarketIDs(won []string) []int {
	ids := make([]int, 0, len(won))
	for _, w := range won {
		if id, err := strconv.Atoi(w); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// OddInfo describe una cuota apostable: su mercado, nombre y la posición que
// ocupa en el vector de cuotas del evento.
type OddInfo struct {
	MarketID int
	Name     string
	Index    int
}

var oddCatalog = map[int]OddInfo{
	OddHomeWin: {MarketID: MarketMatchWinner, Name: "1", Index: 0},
	OddDraw:    {MarketID: MarketMatchWinner, Name: "X", Index: 1},
	OddAwayWin: {MarketID: MarketMatchWinner, Name: "2", Index: 2},
}

// MarketInfo devuelve la descripción de una cuota por su id.
func MarketInfo(oddID int) (OddInfo, bool) {
	info, ok := oddCatalog[oddID]
	return info, ok
}
