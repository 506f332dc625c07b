package main

import (
	"time"

	"github.com/pkg/errors"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

// ProcesoConfig describe un proceso a admitir al arrancar
type ProcesoConfig struct {
	PID       uint32 `json:"PID"`
	Prioridad uint32 `json:"PRIORIDAD"`
	Tamanio   uint32 `json:"TAMANIO"`
}

// KernelConfig define la configuración del módulo Kernel
type KernelConfig struct {
	IPMemory               string          `json:"IP_MEMORIA"`
	PortMemory             int             `json:"PUERTO_MEMORIA"`
	LogLevel               string          `json:"LOG_LEVEL"`
	CapacidadCola          int             `json:"CAPACIDAD_COLA"`
	GradoMultiprogramacion int             `json:"GRADO_MULTIPROGRAMACION"`
	Procesos               []ProcesoConfig `json:"PROCESOS"`
}

var (
	kernelConfig  *KernelConfig
	memoriaClient *utils.HTTPClient
)

func inicializarKernel(configPath string) error {
	kernelConfig = utils.CargarConfiguracion[KernelConfig](configPath)

	utils.InicializarLogger(kernelConfig.LogLevel, "Kernel")
	utils.InfoLog.Info("Inicializando Kernel", "config_path", configPath)

	InicializarPlanificador(kernelConfig)

	// Inicializar y conectar con Memoria
	memoriaClient = utils.NewHTTPClient(kernelConfig.IPMemory, kernelConfig.PortMemory, "Kernel")
	if err := conectarAMemoria(10, 3*time.Second); err != nil {
		utils.ErrorLog.Error("No se pudo conectar con Memoria", "error", err)
		return err
	}

	respuesta, err := memoriaClient.EnviarYValidar(utils.MensajeHandshake, map[string]interface{}{})
	if err != nil {
		return errors.Wrap(err, "handshake con Memoria")
	}
	utils.InfoLog.Info("Handshake con Memoria",
		"tam_pagina", respuesta["tam_pagina"],
		"bits_direccion", respuesta["bits_direccion"],
		"marcos", respuesta["marcos"])

	utils.InfoLog.Info("Kernel inicializado correctamente")
	return nil
}

// conectarAMemoria intenta conectar con el módulo de Memoria con reintentos
func conectarAMemoria(intentosMax int, espera time.Duration) error {
	utils.InfoLog.Info("Conectando con Memoria", "intentos_max", intentosMax)

	for i := 0; i < intentosMax; i++ {
		err := memoriaClient.VerificarConexion()
		if err == nil {
			utils.InfoLog.Info("Conexión establecida con Memoria")
			return nil
		}

		utils.InfoLog.Warn("Fallo al conectar con Memoria, reintentando", "intento", i+1, "error", err)
		time.Sleep(espera)
	}

	return errors.Errorf("no se pudo establecer conexión después de %d intentos", intentosMax)
}

// admitirProcesosConfigurados crea un PCB por cada proceso de la configuración.
// Devuelve cuántos quedaron en READY.
func admitirProcesosConfigurados(procesos []ProcesoConfig) int {
	admitidos := 0
	for _, p := range procesos {
		pcb := NuevoPCB(p.PID, p.Prioridad, p.Tamanio)
		if err := AdmitirProceso(pcb); err != nil {
			utils.ErrorLog.Error("No se pudo admitir el proceso", "pid", p.PID, "error", err)
			continue
		}
		admitidos++
	}
	return admitidos
}
