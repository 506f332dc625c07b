package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

func main() {
	// Inicializar loggers
	utils.InicializarLogger("INFO", "Kernel")

	utils.InfoLog.Info("Kernel iniciando", "args", os.Args)

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Uso: %s <archivo_configuracion>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ejemplo: %s configs/kernel-config.json\n", os.Args[0])
		os.Exit(1)
	}

	configPath := os.Args[1]

	// Verificar que el archivo de configuración existe
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		utils.ErrorLog.Error("El archivo de configuración no existe", "archivo", configPath)
		os.Exit(1)
	}

	if err := inicializarKernel(configPath); err != nil {
		utils.ErrorLog.Error("Error durante la inicialización del Kernel", "error", err)
		os.Exit(1)
	}

	admitidos := admitirProcesosConfigurados(kernelConfig.Procesos)
	utils.InfoLog.Info("Procesos admitidos", "cantidad", admitidos, "configurados", len(kernelConfig.Procesos))

	// Ctrl+C deja de despachar y espera a los procesos en EXEC
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orden := PlanificarCortoPlazo(ctx, memoriaClient)
	utils.InfoLog.Info("Planificación terminada", "orden", orden, "pico_multiprogramacion", PicoMultiprogramacion())

	if archivo, err := solicitarDump(memoriaClient); err != nil {
		utils.ErrorLog.Error("Error solicitando memory dump", "error", err)
	} else {
		utils.InfoLog.Info("Memory dump generado", "archivo", archivo)
	}

	fallidos := 0
	for _, pcb := range ProcesosFinalizados() {
		if pcb.MotivoFin != "" {
			fallidos++
		}
	}
	if fallidos > 0 {
		utils.ErrorLog.Error("Procesos con errores", "cantidad", fallidos)
		os.Exit(1)
	}
}
