package main

// @title           Warung Digital API
// @version         1.0
// @description     API do caixa do warung: catálogo, carrinho, fechamento de venda, histórico, configurações e relatórios

// @contact.name   Suporte Warung Digital

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Cabeçalho de autenticação JWT usando o esquema Bearer. Exemplo: "Bearer {token}"
