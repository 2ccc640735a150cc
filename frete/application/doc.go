// Package application contém os casos de uso do relay de fretes: montagem do
// payload da transportadora, tradução da resposta, cache do último resultado,
// amostrador em segundo plano e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: QuoteService.Quote(ctx, pedido, origem) devolve a lista de fretes e
// grava o resultado no ResultCache.
package application
