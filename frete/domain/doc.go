// Package domain define os tipos e contratos do relay de fretes.
//
// Este pacote não depende de net/http nem de implementações concretas
// (arquivo, redis, cliente HTTP da transportadora).
package domain
