package workers

// Name pools for procedural generation.
var firstNames = []string{
	"Anton", "Boris", "Dmitri", "Egor", "Fedor", "Gleb", "Igor", "Kirill",
	"Leonid", "Maxim", "Nikita", "Oleg", "Pavel", "Roman", "Semyon", "Timur",
	"Vadim", "Yuri", "Anna", "Daria", "Elena", "Irina", "Kira", "Lidia",
	"Marina", "Nina", "Olga", "Polina", "Sofia", "Tatiana", "Vera", "Zoya",
}

var lastNames = []string{
	"Orlov", "Volkov", "Sokolov", "Kuznetsov", "Morozov", "Lebedev", "Novikov",
	"Kozlov", "Pavlov", "Stepanov", "Nikolaev", "Zakharov", "Belov", "Gusev",
	"Titov", "Frolov", "Markov", "Sorokin", "Zaitsev", "Kiselev", "Melnikov",
	"Tarasov", "Krylov", "Gromov",
}
