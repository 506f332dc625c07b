package mmu

// Descomposición de direcciones virtuales: [segmento | página | desplazamiento]

// Desplazamiento devuelve los BitsDesplazamiento bits bajos de la dirección
func (c Config) Desplazamiento(dir uint32) uint32 {
	return dir & (c.TamanioPagina() - 1)
}

// IndiceSegmento devuelve el índice de primer nivel
func (c Config) IndiceSegmento(dir uint32) int {
	return int(dir >> (c.BitsDesplazamiento + c.BitsPagina))
}

// IndicePagina devuelve el índice de segundo nivel
func (c Config) IndicePagina(dir uint32) int {
	return int((dir >> c.BitsDesplazamiento) & uint32(c.MaxPaginasPorTabla()-1))
}

// Componer arma una dirección virtual a partir de sus tres componentes
func (c Config) Componer(segmento int, pagina int, desplazamiento uint32) uint32 {
	return uint32(segmento)<<(c.BitsDesplazamiento+c.BitsPagina) |
		uint32(pagina)<<c.BitsDesplazamiento |
		c.Desplazamiento(desplazamiento)
}

// PaginasNecesarias calcula ceil(tamanio / TamanioPagina)
func (c Config) PaginasNecesarias(tamanio uint32) int {
	tamPagina := uint64(c.TamanioPagina())
	return int((uint64(tamanio) + tamPagina - 1) / tamPagina)
}

// direccionFisica concatena el marco con el desplazamiento
func (c Config) direccionFisica(marco int, desplazamiento uint32) uint32 {
	return uint32(marco)<<c.BitsDesplazamiento | desplazamiento
}

// marcoDeFisica recupera el número de marco de una dirección física
func (c Config) marcoDeFisica(fisica uint32) int {
	return int(fisica >> c.BitsDesplazamiento)
}
