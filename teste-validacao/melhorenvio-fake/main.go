// Command melhorenvio-fake imita o endpoint de cálculo da Melhor Envio para
// testes manuais do relay: MELHOR_ENVIO_URL=http://localhost:8081/api/v2/me/shipment/calculate
package main

import (
	"encoding/json"
	"flag"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type offer struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Price        string  `json:"price,omitempty"`
	DeliveryTime int     `json:"delivery_time,omitempty"`
	Error        string  `json:"error,omitempty"`
	Company      company `json:"company"`
}

type company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var catalog = []offer{
	{ID: 1, Name: "PAC", Company: company{ID: 1, Name: "Correios"}},
	{ID: 2, Name: "SEDEX", Company: company{ID: 1, Name: "Correios"}},
	{ID: 3, Name: ".Package", Company: company{ID: 2, Name: "Jadlog"}},
	{ID: 4, Name: ".Com", Company: company{ID: 2, Name: "Jadlog"}},
	{ID: 17, Name: "Mini Envios", Company: company{ID: 1, Name: "Correios"}},
}

func main() {
	addr := flag.String("addr", ":8081", "endereço de escuta")
	failRate := flag.Float64("falhas", 0.25, "fração das ofertas que voltam com erro")
	delay := flag.Duration("atraso", 0, "atraso máximo por resposta (para testar timeout)")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/me/shipment/calculate", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
			return
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"The given data was invalid."}`))
			return
		}

		if *delay > 0 {
			time.Sleep(rand.N(*delay))
		}

		offers := make([]offer, 0, len(catalog))
		for _, o := range catalog {
			if rand.Float64() < *failRate {
				o.Error = "Transportadora não atende este trecho."
			} else {
				o.Price = strconv.FormatFloat(10+rand.Float64()*90, 'f', 2, 64)
				o.DeliveryTime = 1 + rand.IntN(12)
			}
			offers = append(offers, o)
		}

		log.Info("cotação simulada", zap.Any("payload", payload), zap.Int("ofertas", len(offers)))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(offers)
	})

	log.Info("fake da Melhor Envio rodando", zap.String("endereco", *addr))
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal("erro ao subir o servidor", zap.Error(err))
	}
}
