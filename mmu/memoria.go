package mmu

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// Memoria es la memoria física compartida junto con su tabla de marcos.
// Reservar, Liberar, Compactar y Escribir toman el lock exclusivo. Las
// traducciones, lecturas y el volcado lo toman en modo lectura.
type Memoria struct {
	config Config
	ram    []byte
	marcos []Marco
	mutex  sync.RWMutex
	logger *slog.Logger
}

// Nueva valida la configuración e inicializa la RAM y la tabla de marcos en cero
func Nueva(config Config, logger *slog.Logger) (*Memoria, error) {
	if err := config.Validar(); err != nil {
		return nil, errors.Wrap(err, "configuración de memoria inválida")
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Memoria{
		config: config,
		ram:    make([]byte, config.TamanioRAM()),
		marcos: make([]Marco, config.CantidadMarcos),
		logger: logger,
	}

	logger.Info("Memoria inicializada",
		"tamaño_ram", len(m.ram),
		"tamaño_página", config.TamanioPagina(),
		"marcos", config.CantidadMarcos,
		"bits_dirección", config.BitsDireccion)

	return m, nil
}

// Config devuelve la geometría con la que se creó la memoria
func (m *Memoria) Config() Config {
	return m.config
}

// traducir resuelve una dirección virtual sin tomar locks
func (m *Memoria) traducir(dir uint32, proc *EspacioVirtual) (uint32, error) {
	segmento := m.config.IndiceSegmento(dir)
	pagina := m.config.IndicePagina(dir)

	tabla := proc.Segmentos.tablaPaginas(segmento)
	if tabla == nil {
		return 0, errors.Wrapf(ErrDireccionInvalida, "pid %d: segmento %d inexistente", proc.PID, segmento)
	}

	pos, ok := tabla.buscar(pagina)
	if !ok {
		return 0, errors.Wrapf(ErrDireccionInvalida, "pid %d: página %d del segmento %d inexistente", proc.PID, pagina, segmento)
	}

	return m.config.direccionFisica(tabla.Entradas[pos].Marco, m.config.Desplazamiento(dir)), nil
}

// Traducir convierte una dirección virtual del proceso en dirección física
func (m *Memoria) Traducir(dir uint32, proc *EspacioVirtual) (uint32, error) {
	if proc == nil {
		return 0, ErrProcesoNulo
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	fisica, err := m.traducir(dir, proc)
	if err != nil {
		m.logger.Debug("Traducción fallida", "pid", proc.PID, "dir_logica", dir, "error", err)
		return 0, err
	}

	m.logger.Debug("Dirección traducida", "pid", proc.PID, "dir_logica", dir, "dir_fisica", fisica)
	return fisica, nil
}

// Reservar agrega tamanio bytes al espacio virtual del proceso y devuelve la
// dirección virtual del primer byte. O se reserva todo o no se toca nada.
func (m *Memoria) Reservar(tamanio uint32, proc *EspacioVirtual) (uint32, error) {
	if proc == nil {
		return 0, ErrProcesoNulo
	}
	if proc.PID == 0 {
		return 0, ErrPIDReservado
	}
	if tamanio == 0 {
		return 0, errors.Wrapf(ErrTamanioInvalido, "pid %d", proc.PID)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	numPaginas := m.config.PaginasNecesarias(tamanio)
	tamPagina := uint64(m.config.TamanioPagina())

	libres := contarMarcosLibres(m.marcos)
	if libres < numPaginas {
		m.logger.Warn("Marcos insuficientes", "pid", proc.PID, "paginas_requeridas", numPaginas, "marcos_libres", libres)
		return 0, errors.Wrapf(ErrMemoriaInsuficiente, "pid %d requiere %d marcos, hay %d libres", proc.PID, numPaginas, libres)
	}

	nuevoBreak := proc.Break + uint64(numPaginas)*tamPagina
	if nuevoBreak > m.config.LimiteVirtual() {
		m.logger.Warn("Espacio virtual agotado", "pid", proc.PID, "break", proc.Break, "paginas_requeridas", numPaginas)
		return 0, errors.Wrapf(ErrEspacioVirtualAgotado, "pid %d: break %d + %d páginas supera %d",
			proc.PID, proc.Break, numPaginas, m.config.LimiteVirtual())
	}

	dirInicial := proc.Break
	proc.Break = nuevoBreak

	marcos := tomarMarcos(m.marcos, proc.PID, numPaginas)

	// Las páginas virtuales quedan contiguas desde el break anterior
	bp := dirInicial
	for _, marco := range marcos {
		dir := uint32(bp)
		tabla := proc.Segmentos.asegurarTablaPaginas(m.config.IndiceSegmento(dir), m.config.MaxPaginasPorTabla())
		tabla.Entradas = append(tabla.Entradas, EntradaPagina{
			IndicePagina: m.config.IndicePagina(dir),
			Marco:        marco,
		})
		bp += tamPagina
	}

	m.logger.Info("Memoria reservada",
		"pid", proc.PID,
		"tamanio", tamanio,
		"paginas", numPaginas,
		"dir_logica", dirInicial,
		"marcos", marcos)

	return uint32(dirInicial), nil
}

// Liberar devuelve a la lista de libres la cadena de marcos que comienza en el
// marco de dir y retira las entradas de página correspondientes. Si dir no se
// puede traducir no se libera nada.
func (m *Memoria) Liberar(dir uint32, proc *EspacioVirtual) error {
	if proc == nil {
		return ErrProcesoNulo
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	fisica, err := m.traducir(dir, proc)
	if err != nil {
		m.logger.Warn("Liberación de dirección inválida", "pid", proc.PID, "dir_logica", dir)
		return err
	}

	primerMarco := m.config.marcoDeFisica(fisica)
	numPaginas := liberarCadena(m.marcos, primerMarco, proc.PID)

	tamPagina := uint64(m.config.TamanioPagina())
	retiradas := 0
	for virtual := uint64(dir); retiradas < numPaginas && virtual < m.config.LimiteVirtual(); virtual += tamPagina {
		tabla := proc.Segmentos.tablaPaginas(m.config.IndiceSegmento(uint32(virtual)))
		if tabla == nil {
			break
		}
		pos, ok := tabla.buscar(m.config.IndicePagina(uint32(virtual)))
		if !ok {
			break
		}
		tabla.Entradas[pos] = EntradaPagina{IndicePagina: IndiceRetirado, Marco: IndiceRetirado}
		retiradas++
	}

	if numPaginas == 0 || retiradas < numPaginas {
		m.logger.Warn("Liberación parcial",
			"pid", proc.PID,
			"dir_logica", dir,
			"marcos_liberados", numPaginas,
			"paginas_retiradas", retiradas)
		return errors.Wrapf(ErrLiberacionParcial, "pid %d: %d marcos liberados, %d páginas retiradas",
			proc.PID, numPaginas, retiradas)
	}

	m.logger.Info("Memoria liberada", "pid", proc.PID, "dir_logica", dir, "paginas", numPaginas)
	return nil
}

// Leer devuelve el byte de la dirección virtual del proceso
func (m *Memoria) Leer(dir uint32, proc *EspacioVirtual) (byte, error) {
	if proc == nil {
		return 0, ErrProcesoNulo
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	fisica, err := m.traducir(dir, proc)
	if err != nil {
		return 0, err
	}
	return m.ram[fisica], nil
}

// Escribir guarda un byte en la dirección virtual del proceso
func (m *Memoria) Escribir(dir uint32, proc *EspacioVirtual, dato byte) error {
	if proc == nil {
		return ErrProcesoNulo
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	fisica, err := m.traducir(dir, proc)
	if err != nil {
		return err
	}
	m.ram[fisica] = dato
	return nil
}

// MarcosLibres cuenta los marcos disponibles
func (m *Memoria) MarcosLibres() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return contarMarcosLibres(m.marcos)
}

// Marco devuelve una copia de la entrada i de la tabla de marcos
func (m *Memoria) Marco(i int) (Marco, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if i < 0 || i >= len(m.marcos) {
		return Marco{}, false
	}
	return m.marcos[i], true
}

// Compactar elimina las entradas de página retiradas del proceso y devuelve
// cuántas quitó. Nunca se llama implícitamente: sin esta llamada los huecos
// permanecen en las tablas.
func (m *Memoria) Compactar(proc *EspacioVirtual) int {
	if proc == nil {
		return 0
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	quitadas := 0
	for _, segmento := range proc.Segmentos.Entradas {
		if segmento.Paginas == nil {
			continue
		}
		vigentes := segmento.Paginas.Entradas[:0]
		for _, entrada := range segmento.Paginas.Entradas {
			if entrada.Retirada() {
				quitadas++
				continue
			}
			vigentes = append(vigentes, entrada)
		}
		segmento.Paginas.Entradas = vigentes
	}

	m.logger.Info("Tablas compactadas", "pid", proc.PID, "entradas_quitadas", quitadas)
	return quitadas
}
