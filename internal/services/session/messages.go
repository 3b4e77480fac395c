package session

// Player-facing message texts
const (
	msgIntro          = "Hey, let's play! Send me a photo and I'll ask everyone else to guess it."
	msgWaitForGuess   = "Hang on, someone has to guess your photo"
	msgGameStarting   = "Please wait, the game is starting"
	msgYourTurn       = "Now it's your turn to take a photo. I'll ask everyone else playing the game to guess!"
	msgSnapPrompt     = "Go ahead, I'm waiting"
	msgConfirmPrompt  = "Is that correct?"
	msgTryAgain       = "Ok. Let's try again."
	msgRoundLive      = "Awesome! I'll send that to everyone playing"
	msgClassifyError  = "Error. Let's try again"
	msgNoTags         = "Sorry, I could not identify anything in your photo. Try again"
	msgGuessed        = "You guessed, yay! 🎊"
	msgNoMatch        = "No, that's not it"
	msgSeeTagsPrefix  = "I see: "
	guessPromptPrefix = "Send me a photo that looks like: "
)
