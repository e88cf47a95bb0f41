package prompts

var defaultPrompts = []string{
	"A photorealistic portrait of a cat wearing a monocle",
	"A squirrel in the style of picasso",
	"Darth vader playing the drums",
	"An astronaut playing a trumpet on the moon",
	"Yoda playing the guitar",
	"An image of a crow sitting in a tree",
	"very long limo",
	"happy software engineer",
	"pug pikachu",
	"A boat down a river",
	"A blue coffee cup",
	"A vintage car",
	"A white dog sleeping on a couch",
	"Raindrops on a window",
	"A empty park bench",
	"stardew valley",
	"pope francis as a DJ in a nightclub",
	"landscape view from the Moon with the earth in the background",
	"cute toy owl made of suede",
	"industrial age pocket watch",
	"futuristic tree house",
	"oil painting of master chief",
	"the perfet bonsai tree",
	"albert einstein beside a chalkboard",
	"minecraft",
	"Dinosaur from jurassic park",
	"majestic royal tall ship on a calm sea",
	"Astronauts in a jungle, cold color palette",
	"A sloth riding a skateboard",
	"A robot chef making sushi",
	"A paper airplane",
	"A car driving on a winding road",
	"A professor giving a lecture",
	"A rocket launching into space",
	"A dog catching a frisbee",
	"A robot serving coffee",
	"A playful otter juggling",
	"A cat napping in a sunbeam",
	"A friendly ghost sipping tea",
	"A single red rose in glass vase",
	"A stack of books",
}
