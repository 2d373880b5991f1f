// Command weft-operator runs a Kubernetes controller that syncs Prompt CRs
// into a weft store.
package main

import (
	"flag"
	"os"

	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/weftlabs/weft/k8s"
	v1 "github.com/weftlabs/weft/k8s/api/v1"
	"github.com/weftlabs/weft/lifecycle"
	"github.com/weftlabs/weft/store"
)

func main() {
	dir := flag.String("dir", "", "Data directory (file backend); empty runs in-memory")
	remote := flag.String("remote", "", "Base URL of a weft server; overrides -dir")
	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	logger := ctrl.Log.WithName("weft-operator")

	var st store.Store
	switch {
	case *remote != "":
		st = store.NewRemote(*remote, nil)
	case *dir != "":
		backend, err := store.NewFileBackend(*dir)
		if err != nil {
			logger.Error(err, "file backend")
			os.Exit(1)
		}
		st = store.NewLocal(backend)
	default:
		st = store.NewMemory()
	}

	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1.AddToScheme(scheme))

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{Scheme: scheme})
	if err != nil {
		logger.Error(err, "manager")
		os.Exit(1)
	}
	reconciler := &k8s.PromptReconciler{
		Client:  mgr.GetClient(),
		Scheme:  mgr.GetScheme(),
		Manager: lifecycle.NewManager(st),
	}
	if err = reconciler.SetupWithManager(mgr); err != nil {
		logger.Error(err, "reconciler")
		os.Exit(1)
	}
	if err = mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		logger.Error(err, "start")
		os.Exit(1)
	}
}
